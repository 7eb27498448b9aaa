package main

import (
	"os"

	"dadam-quiz-service/internal/cli"
	"github.com/golang/glog"
)

func main() {
	err := cli.Execute()
	glog.Flush()
	if err != nil {
		os.Exit(1)
	}
}
