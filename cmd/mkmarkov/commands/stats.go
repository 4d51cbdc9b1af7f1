package commands

import (
	"github.com/spf13/cobra"

	"github.com/White-Green/MkMarkov/pkg/chain"
	"github.com/White-Green/MkMarkov/pkg/modelfile"
)

// statsReport is the output of the stats command.
type statsReport struct {
	chain.Stats `yaml:",inline"`

	Model         string   `json:"model" yaml:"model"`
	FunctionNames []string `json:"function_names,omitempty" yaml:"function_names,omitempty"`
}

var statsName string

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show model statistics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := getContext()
		if err != nil {
			return err
		}
		model, path, err := loadModel(cmd.Context(), c, statsName)
		if err != nil {
			return err
		}
		return outputResult(cmd, statsReport{Model: path, Stats: model.Stats(), FunctionNames: model.Functions()})
	},
}

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List saved models",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := getContext()
		if err != nil {
			return err
		}
		s, err := openStorage(c)
		if err != nil {
			return err
		}
		names, err := modelfile.List(cmd.Context(), s)
		if err != nil {
			return err
		}
		return outputResult(cmd, names)
	},
}

func init() {
	statsCmd.Flags().StringVarP(&statsName, "name", "n", modelfile.DefaultName, "model name")
}
