package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/erikrandall/csla/internal/compiler"
	"github.com/erikrandall/csla/internal/harness"
)

// FileValidation is the validation outcome of one scenario file.
type FileValidation struct {
	File        string                `json:"file"`
	Valid       bool                  `json:"valid"`
	Code        string                `json:"code,omitempty"`
	Message     string                `json:"message,omitempty"`
	Diagnostics []compiler.Diagnostic `json:"diagnostics,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid bool             `json:"valid"`
	Files []FileValidation `json:"files"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <scenario>...",
		Short: "Validate scenario files without running them",
		Long: `Validate scenario files against the CUE scenario schema and the
per-op field requirements, without running them.

Every file is checked; the command fails if any file is invalid.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args, cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, files []string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	result := ValidationResult{Valid: true, Files: make([]FileValidation, 0, len(files))}
	for _, file := range files {
		formatter.VerboseLog("Validating %s", file)
		fv := validateFile(file)
		if !fv.Valid {
			result.Valid = false
		}
		result.Files = append(result.Files, fv)
	}

	if formatter.JSON() {
		resp := CLIResponse{Status: "ok", Data: result}
		if !result.Valid {
			resp.Status = "error"
			resp.Error = &CLIError{Code: ErrCodeSchema, Message: "validation failed"}
		}
		if err := formatter.Respond(resp); err != nil {
			return err
		}
	} else {
		outputValidationText(cmd, result)
	}

	if !result.Valid {
		return NewExitError(ExitFailure, "validation failed")
	}
	return nil
}

func validateFile(file string) FileValidation {
	fv := FileValidation{File: file, Valid: true}

	_, err := harness.LoadScenario(file)
	if err == nil {
		return fv
	}

	fv.Valid = false
	fv.Message = err.Error()
	fv.Code = ErrCodeLoad

	var schemaErr *compiler.SchemaError
	if errors.As(err, &schemaErr) {
		fv.Code = ErrCodeSchema
		fv.Diagnostics = schemaErr.Diagnostics
	}
	return fv
}

func outputValidationText(cmd *cobra.Command, result ValidationResult) {
	w := cmd.OutOrStdout()
	for _, fv := range result.Files {
		if fv.Valid {
			fmt.Fprintf(w, "✓ %s\n", fv.File)
			continue
		}

		fmt.Fprintf(w, "✗ %s\n", fv.File)
		if len(fv.Diagnostics) == 0 {
			fmt.Fprintf(w, "  [%s] %s\n", fv.Code, fv.Message)
			continue
		}
		for _, d := range fv.Diagnostics {
			fmt.Fprintf(w, "  [%s] %s\n", fv.Code, d)
		}
	}
}
