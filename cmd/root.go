/*

Copyright © 2025 Benny Powers <web@bennypowers.com>

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program. If not, see <http://www.gnu.org/licenses/>.
*/

package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alidn/universal-lsif/internal/langconfig"
	"github.com/alidn/universal-lsif/internal/logging"
	"github.com/alidn/universal-lsif/orchestrator"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "universal-lsif <init-server-command> <language> [project_root]",
	Short: "Generate an LSIF dump by driving a language server as an oracle",
	Long: `universal-lsif walks a project tree, opens each source file with a
language server spawned as a child process, asks it to resolve every
identifier's definition, and writes the result as an LSIF dump.`,
	Args: cobra.RangeArgs(2, 3),
	RunE: runGenerate,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. It is called by main.main and only needs to run once.
//
// --langs is checked here, ahead of rootCmd.Execute(), rather than in a
// PersistentPreRunE hook: cobra validates positional args (RangeArgs(2, 3))
// before any PreRun hook fires, so a hook would never see "universal-lsif
// --langs" with no other arguments — it would be rejected by arg
// validation first. Checking argv directly, before cobra ever parses it,
// lets --langs work standalone.
func Execute() {
	if hasLangsFlag(os.Args[1:]) {
		for _, name := range langconfig.Names() {
			fmt.Println(name)
		}
		return
	}

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func hasLangsFlag(args []string) bool {
	for _, arg := range args {
		if arg == "--langs" {
			return true
		}
	}
	return false
}

func init() {
	rootCmd.Flags().String("server-args", "", "space-separated arguments passed to the language server command")
	rootCmd.Flags().String("output", "", "path to write the LSIF dump to (default: <project_root>/dump.json)")
	rootCmd.Flags().Bool("debug", false, "enable debug logging")
	rootCmd.Flags().Bool("quiet", false, "suppress info-level logging")
	rootCmd.Flags().Bool("langs", false, "print the supported language names and exit")

	viper.BindPFlag("output", rootCmd.Flags().Lookup("output"))
	viper.BindPFlag("serverArgs", rootCmd.Flags().Lookup("server-args"))
	viper.SetEnvPrefix("UNIVERSAL_LSIF")
	viper.BindEnv("output", "UNIVERSAL_LSIF_OUTPUT")
	viper.BindEnv("serverArgs", "UNIVERSAL_LSIF_SERVER_ARGS")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	debug, _ := cmd.Flags().GetBool("debug")
	quiet, _ := cmd.Flags().GetBool("quiet")
	logging.SetDebugEnabled(debug)
	logging.SetQuietEnabled(quiet)

	serverCommand := args[0]
	language := args[1]

	projectRoot := "."
	if len(args) == 3 {
		projectRoot = args[2]
	}
	absRoot, err := filepath.Abs(projectRoot)
	if err != nil {
		return fmt.Errorf("resolving project root %q: %w", projectRoot, err)
	}

	output := viper.GetString("output")
	if output == "" {
		output = filepath.Join(absRoot, "dump.json")
	}

	serverArgs := strings.Fields(viper.GetString("serverArgs"))

	return orchestrator.Run(cmd.Context(), orchestrator.Options{
		ServerCommand: serverCommand,
		ServerArgs:    serverArgs,
		Language:      language,
		ProjectRoot:   absRoot,
		OutputPath:    output,
	})
}
