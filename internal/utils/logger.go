package utils

import (
	"log"
	"os"
)

// GetLogger returns the process-wide logger handed to every component.
func GetLogger() *log.Logger {
	return log.New(os.Stdout, "rewardsd: ", log.Ldate|log.Ltime|log.Lshortfile)
}
