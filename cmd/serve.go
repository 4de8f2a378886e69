package cmd

import (
	"io"

	"github.com/jaffee/commandeer/cobrafy"
	"github.com/spf13/cobra"

	"github.com/scott717/submit-service/web"
)

func NewServeCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	com, err := cobrafy.Command(web.NewMain())
	if err != nil {
		panic(err)
	}
	com.Use = "serve"
	com.Short = "Run the sampling API server."
	return com
}

func init() {
	subcommandFns["serve"] = NewServeCommand
}
