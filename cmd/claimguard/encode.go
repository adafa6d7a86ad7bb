package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/claimguard/internal/prediction"
	"github.com/Veraticus/claimguard/internal/serverless"
)

func encodeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Print a base64 request body for the serverless handler",
		Example: `  claimguard encode --model-type aws_nova --cdt-code D0120 --amount 150
  claimguard encode --model-type nlp_classifier --notes "unnecessary" | claimguard invoke --body -`,
		RunE: runEncode,
	}

	addRecordFlags(cmd)

	return cmd
}

func runEncode(cmd *cobra.Command, _ []string) error {
	req, err := requestFromFlags(cmd)
	if err != nil {
		return err
	}

	body, err := serverless.Encode(req)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), body)
	return err
}

// requestFromFlags validates the record flags and converts them to a wire request.
func requestFromFlags(cmd *cobra.Command) (serverless.Request, error) {
	record, err := prediction.NewRecord(recordInputFromFlags(cmd))
	if err != nil {
		return serverless.Request{}, err
	}
	return serverless.RequestFromRecord(record), nil
}
