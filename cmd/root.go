package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"mysql2pg/internal/config"
	"mysql2pg/internal/console"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile     string
	initFlag    bool
	forceFlag   bool
	dryRunFlag  bool
	verboseFlag bool
	yesFlag     bool

	exitCode int
)

var RootCmd = &cobra.Command{
	Use:   "mysql2pg",
	Short: "MySQL → PostgreSQL migration tool",
	Long: `
 ═══════════════════════════════════════════════
  MySQL → PostgreSQL Migration Tool (mysql2pg)
  one-shot migration powered by pgloader + Docker
 ═══════════════════════════════════════════════
`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		con := console.New(verboseFlag)

		if initFlag {
			return runInit(con)
		}

		mysqlCfg, pgCfg, err := config.Load()
		if err != nil {
			return err
		}

		if dryRunFlag {
			exitCode = runDryRun(con, mysqlCfg, pgCfg)
			return nil
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		exitCode = runMigration(ctx, con, mysqlCfg, pgCfg)
		return nil
	},
}

func runInit(con *console.Console) error {
	if err := config.Init("", forceFlag); err != nil {
		return err
	}
	con.Printf("  ✓ Created %s\n", config.FileName)
	con.Printf("  Edit the file with your MySQL/PostgreSQL credentials, then run:\n")
	con.Printf("  mysql2pg\n")
	return nil
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	os.Exit(exitCode)
}

func init() {
	cobra.OnInitialize(initConfig)

	RootCmd.Flags().StringVar(&cfgFile, "config", "", "config file (default is ./mysql2pg.yaml)")
	RootCmd.Flags().BoolVar(&initFlag, "init", false, "Create the mysql2pg.yaml template and exit")
	RootCmd.Flags().BoolVar(&forceFlag, "force", false, "Overwrite an existing config file with --init")
	RootCmd.Flags().BoolVar(&dryRunFlag, "dry-run", false, "Validate config, test connections, preview the schema — no migration")
	RootCmd.Flags().BoolVar(&verboseFlag, "verbose", false, "Show full detail tables in the console")
	RootCmd.Flags().BoolVarP(&yesFlag, "yes", "y", false, "Skip the confirmation prompt")
}

// initConfig reads the config file in: explicit flag first, then the current
// directory, then the executable's directory.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		if ex, err := os.Executable(); err == nil {
			viper.AddConfigPath(filepath.Dir(ex))
		}
		viper.SetConfigName("mysql2pg")
		viper.SetConfigType("yaml")
	}

	viper.AutomaticEnv()

	_ = viper.ReadInConfig()
}
