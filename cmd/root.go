package cmd

import (
	"accounts/domain"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var cfgFile string

var quit = make(chan bool)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "accounts",
	Short: "Endowment accounts service",
	Long: `Keeps the ledgers of endowments, routes their funds into strategies
and delivers the resulting messages to the host gateway.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "config file")
}

func initConfig() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	domain.ReadConfig(cfgFile)
}
