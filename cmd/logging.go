package cmd

import (
	"github.com/jimbok8/lbvh-1/log"
)

var logger = log.New("lbvh-check")

func setupLogging(levelName string) error {
	level, err := log.ParseLevel(levelName)
	if err != nil {
		return err
	}

	log.SetLevel(level)
	return nil
}
