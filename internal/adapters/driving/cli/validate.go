package cli

import (
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check that every document can be inserted",
	Long: `Validate runs the story and menu insertion as a dry run. It reports every
entry that cannot be encoded and every entry no free pool can hold, without
writing any file.`,
	Args: cobra.NoArgs,
	RunE: runValidate,
}

func init() {
	addStageFlags(validateCmd)
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, _ []string) error {
	svc, err := loadServices()
	if err != nil {
		return err
	}
	if svc.Validator == nil {
		return errNotConfigured("validate")
	}
	report, err := svc.Validator.Validate(commandContext(cmd), insertOptions())
	printReport(cmd.OutOrStdout(), "validate", report)
	return err
}
