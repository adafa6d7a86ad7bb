package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
)

const (
	defaultBedrockModel  = "amazon.nova-micro-v1:0"
	defaultBedrockRegion = "us-east-1"
)

// modelInvoker is the subset of the Bedrock runtime client used here.
type modelInvoker interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// bedrockClient implements the Client interface for Amazon Nova models on Bedrock.
type bedrockClient struct {
	invoker   modelInvoker
	model     string
	inference InferenceConfig
}

// newBedrockClient loads AWS credentials from the default chain and creates a runtime client.
func newBedrockClient(ctx context.Context, cfg Config) (*bedrockClient, error) {
	region := cfg.Region
	if region == "" {
		region = defaultBedrockRegion
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return newBedrockClientWithInvoker(bedrockruntime.NewFromConfig(awsCfg), cfg.Model), nil
}

func newBedrockClientWithInvoker(invoker modelInvoker, model string) *bedrockClient {
	if model == "" {
		model = defaultBedrockModel
	}
	return &bedrockClient{
		invoker:   invoker,
		model:     model,
		inference: DefaultInferenceConfig(),
	}
}

type novaContent struct {
	Text string `json:"text"`
}

type novaMessage struct {
	Role    string        `json:"role"`
	Content []novaContent `json:"content"`
}

type novaRequest struct {
	Messages        []novaMessage   `json:"messages"`
	InferenceConfig InferenceConfig `json:"inferenceConfig"`
}

type novaResponse struct {
	Output struct {
		Message novaMessage `json:"message"`
	} `json:"output"`
	StopReason string `json:"stopReason"`
}

// Complete invokes the model with a single user message.
func (c *bedrockClient) Complete(ctx context.Context, prompt string) (Completion, error) {
	body, err := json.Marshal(novaRequest{
		Messages: []novaMessage{
			{Role: "user", Content: []novaContent{{Text: prompt}}},
		},
		InferenceConfig: c.inference,
	})
	if err != nil {
		return Completion{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	out, err := c.invoker.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(c.model),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        body,
	})
	if err != nil {
		return Completion{}, fmt.Errorf("bedrock invoke failed: %w", err)
	}

	var response novaResponse
	if err := json.Unmarshal(out.Body, &response); err != nil {
		return Completion{}, fmt.Errorf("failed to parse response: %w", err)
	}

	if len(response.Output.Message.Content) == 0 {
		return Completion{}, fmt.Errorf("no content returned by model %s", c.model)
	}

	return parseCompletion(response.Output.Message.Content[0].Text), nil
}
