package main

import (
	"boscoin.io/gasmanager/cmd/gasmanager/cmd"
)

func main() {
	cmd.Execute()
}
