package main

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/spf13/cobra"

	"github.com/Veraticus/claimguard/internal/serverless"
)

func invokeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "invoke",
		Short: "Run the serverless handler locally",
		Long: `Invoke the serverless prediction handler in-process with an API Gateway
proxy event. The body is either given with --body (base64, "-" reads stdin)
or built from the record flags.`,
		RunE: runInvoke,
	}

	addRecordFlags(cmd)
	cmd.Flags().String("body", "", "base64 request body, or - to read stdin")
	cmd.Flags().String("request-id", "", "request id reported in responses")

	return cmd
}

func runInvoke(cmd *cobra.Command, _ []string) error {
	body, _ := cmd.Flags().GetString("body")
	requestID, _ := cmd.Flags().GetString("request-id")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	switch body {
	case "":
		req, err := requestFromFlags(cmd)
		if err != nil {
			return err
		}
		if body, err = serverless.Encode(req); err != nil {
			return err
		}
	case "-":
		if body, err = readBody(cmd.InOrStdin()); err != nil {
			return err
		}
	}

	handler, sink, err := serverless.Build(cmd.Context(), cfg, slog.Default())
	if err != nil {
		return err
	}
	defer func() {
		if err := sink.Close(); err != nil {
			slog.Warn("Failed to close notification sink", "error", err)
		}
	}()

	ctx := cmd.Context()
	if requestID != "" {
		ctx = lambdacontext.NewContext(ctx, &lambdacontext.LambdaContext{AwsRequestID: requestID})
	}

	resp, err := handler.Handle(ctx, events.APIGatewayProxyRequest{
		HTTPMethod: "POST",
		Path:       "/predict",
		Body:       body,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "status: %d\n", resp.StatusCode)
	_, err = fmt.Fprintln(out, resp.Body)
	return err
}

func readBody(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read body: %w", err)
	}
	return strings.TrimSpace(line), nil
}
