package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/weisyn/connector/internal/app/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "显示版本信息",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Println(version.GetFullVersion())
	},
}
