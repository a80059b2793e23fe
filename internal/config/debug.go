package config

import "os"

func IsDebug() bool {
	return os.Getenv("WORKBOT_DEBUG") == "1"
}
