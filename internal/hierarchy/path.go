package hierarchy

import (
	"fmt"
	"strings"
)

// Input column headers identifying the target container. These columns exist
// only in the tabular input.
const (
	HeaderGroup    = "group"
	HeaderProject  = "project"
	HeaderSubject  = "subject"
	HeaderSession  = "session"
	HeaderFile     = "file"
	HeaderFileType = "file type"
)

// ContainerPath identifies one file in the hierarchy. Used only for lookup,
// never persisted.
type ContainerPath struct {
	Group      string
	Project    string
	Subject    string
	Session    string
	ObjectName string
	FileType   string // optional suffix tried when the bare name has no match
}

// PathFromRow extracts the identifying columns from a row, consuming them so
// they do not leak into the annotation's extension payload. The row map is
// mutated.
func PathFromRow(row map[string]any) (ContainerPath, error) {
	path := ContainerPath{
		Group:      popString(row, HeaderGroup),
		Project:    popString(row, HeaderProject),
		Subject:    popString(row, HeaderSubject),
		Session:    popString(row, HeaderSession),
		ObjectName: popString(row, HeaderFile),
		FileType:   popString(row, HeaderFileType),
	}

	var missing []string
	for _, part := range []struct {
		name  string
		value string
	}{
		{HeaderGroup, path.Group},
		{HeaderProject, path.Project},
		{HeaderSubject, path.Subject},
		{HeaderSession, path.Session},
		{HeaderFile, path.ObjectName},
	} {
		if part.value == "" {
			missing = append(missing, part.name)
		}
	}
	if len(missing) > 0 {
		return ContainerPath{}, fmt.Errorf("row is missing identifying columns: %s", strings.Join(missing, ", "))
	}

	return path, nil
}

// SessionPath returns the lookup string for the owning session.
func (p ContainerPath) SessionPath() string {
	return strings.Join([]string{p.Group, p.Project, p.Subject, p.Session}, "/")
}

// NameWithType returns the object name with the file-type suffix appended.
func (p ContainerPath) NameWithType() string {
	if p.FileType == "" {
		return p.ObjectName
	}
	return p.ObjectName + "." + p.FileType
}

func popString(row map[string]any, key string) string {
	v, ok := row[key]
	if !ok {
		return ""
	}
	delete(row, key)
	if v == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprintf("%v", v))
}
