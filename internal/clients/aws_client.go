package clients

import (
	"context"
	"log/slog"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

var (
	awsCfg    aws.Config
	awsErr    error
	awsOnce   sync.Once
	awsTarget string
)

// GetAWSConfig loads the shared AWS config once. An empty endpoint uses the
// regional AWS endpoint; local setups point it at DynamoDB Local.
func GetAWSConfig(ctx context.Context, region, endpoint string) (aws.Config, error) {
	awsOnce.Do(func() {
		slog.Info("[AWSClient] Initializing AWS Config...",
			slog.String("region", region),
			slog.String("endpoint", endpoint))

		awsCfg, awsErr = config.LoadDefaultConfig(ctx, config.WithRegion(region))
		if awsErr != nil {
			slog.Error("[AWSClient] Failed to load AWS config", slog.String("error", awsErr.Error()))
			return
		}

		awsTarget = endpoint
		slog.Info("[AWSClient] AWS Config Initialized")
	})

	return awsCfg, awsErr
}

func GetDynamoDBClient(ctx context.Context, region, endpoint string) (*dynamodb.Client, error) {
	cfg, err := GetAWSConfig(ctx, region, endpoint)
	if err != nil {
		return nil, err
	}
	return dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		if awsTarget != "" {
			o.BaseEndpoint = aws.String(awsTarget)
		}
	}), nil
}
