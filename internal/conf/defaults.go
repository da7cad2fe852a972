// conf/defaults.go default values for settings
package conf

import (
	"time"

	"github.com/spf13/viper"
)

// Sets default values for the configuration.
func setDefaultConfig() {
	viper.SetDefault("debug", false)

	viper.SetDefault("main.name", "ROI-Import")
	viper.SetDefault("main.log.enabled", true)
	viper.SetDefault("main.log.path", "logs/roi-import.log")
	viper.SetDefault("main.log.maxsize", 100)
	viper.SetDefault("main.log.maxbackups", 3)
	viper.SetDefault("main.log.maxage", 28)

	viper.SetDefault("flywheel.apikey", "")
	viper.SetDefault("flywheel.host", "")
	viper.SetDefault("flywheel.timeout", 30*time.Second)

	viper.SetDefault("import.dryrun", false)
	viper.SetDefault("import.firstrow", 1)
	viper.SetDefault("import.delimiter", ",")
	viper.SetDefault("import.sheet", "")
	viper.SetDefault("import.mappingcolumn", "")
	viper.SetDefault("import.outputdir", "output")
	viper.SetDefault("import.workers", 1)
}
