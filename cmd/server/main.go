// @title Escape Game API
// @version 1.0
// @description Parties, groups, challenges and chat for the escape game.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"github.com/spf13/cobra"
)

const releaseVersion = "1.0.0"

func main() {
	cobra.CheckErr(newCmd().Execute())
}
