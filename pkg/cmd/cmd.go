// Package cmd contains the command line applications for the project.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/yeisme/docshelf/pkg/configs"
	"github.com/yeisme/docshelf/pkg/log"
)

var (
	// configPath 配置文件或所在目录.
	configPath string

	rootCmd = &cobra.Command{
		Use:          configs.AppName,
		Short:        "Upload, list and preview documents",
		Version:      configs.AppVersion,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := configs.InitConfig(configPath); err != nil {
				return err
			}

			log.Init()

			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return log.Close()
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "./", "config file or directory")

	registerServeCommands()
	registerConfigsCommands()
	registerFilesCommands()
	registerBackendsCommands()
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
