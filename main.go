package main

import "github.com/Ujwal-Bamb/all-jobs-finder/cmd"

var version = "dev"

func main() {
	cmd.Execute(version)
}
