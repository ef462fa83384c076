package db

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const (
	TWEETS_TABLE_NAME       = "CovidTweets"
	DAILY_TRENDS_TABLE_NAME = "CovidDailyTrends"
	LOCATIONS_TABLE_NAME    = "CovidLocationStats"
	FORECAST_TABLE_NAME     = "CovidForecast"

	maxBatchSize = 25
)

// TweetItem is one processed tweet as stored in DynamoDB.
type TweetItem struct {
	ID          int      `dynamodbav:"id"`
	Text        string   `dynamodbav:"original_text"`
	CleanedText string   `dynamodbav:"cleaned_text"`
	Date        string   `dynamodbav:"date"`
	Location    string   `dynamodbav:"user_location"`
	Label       int      `dynamodbav:"label"`
	Sentiment   string   `dynamodbav:"sentiment,omitempty"`
	Symptoms    []string `dynamodbav:"symptoms,omitempty,stringset"`
}

type DailyTrendItem struct {
	Date          string `dynamodbav:"date"`
	TotalTweets   int    `dynamodbav:"total_tweets"`
	DiseaseTweets int    `dynamodbav:"disease_tweets"`
}

type LocationItem struct {
	Location     string  `dynamodbav:"cleaned_location"`
	TotalTweets  int     `dynamodbav:"total_tweets"`
	DiseaseCount int     `dynamodbav:"disease_count"`
	DiseaseRatio float64 `dynamodbav:"disease_ratio"`
}

// Client is the subset of the DynamoDB API the store uses.
type Client interface {
	dynamodb.ScanAPIClient
	BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
}

type Store struct {
	client  Client
	backoff time.Duration
}

func NewStore(client Client) *Store {
	return &Store{client: client, backoff: 500 * time.Millisecond}
}

func (s *Store) ScanTweets(ctx context.Context) ([]TweetItem, error) {
	var items []TweetItem
	err := scanInto(ctx, s.client, TWEETS_TABLE_NAME, &items)
	return items, err
}

func (s *Store) ScanDailyTrends(ctx context.Context) ([]DailyTrendItem, error) {
	var items []DailyTrendItem
	err := scanInto(ctx, s.client, DAILY_TRENDS_TABLE_NAME, &items)
	return items, err
}

func (s *Store) ScanLocations(ctx context.Context) ([]LocationItem, error) {
	var items []LocationItem
	err := scanInto(ctx, s.client, LOCATIONS_TABLE_NAME, &items)
	return items, err
}

// ScanForecast returns the forecast rows with whatever attributes they carry.
func (s *Store) ScanForecast(ctx context.Context) ([]map[string]any, error) {
	var items []map[string]any
	err := scanInto(ctx, s.client, FORECAST_TABLE_NAME, &items)
	return items, err
}

func scanInto[T any](ctx context.Context, client dynamodb.ScanAPIClient, table string, out *[]T) error {
	paginator := dynamodb.NewScanPaginator(client, &dynamodb.ScanInput{
		TableName: aws.String(table),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return fmt.Errorf("[DynamoDB] Scan of %s failed: %w", table, err)
		}
		var items []T
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &items); err != nil {
			slog.Error("[DynamoDB] Unable to unmarshal page",
				slog.String("table", table),
				slog.String("error", err.Error()))
			return err
		}
		*out = append(*out, items...)
	}

	slog.Info("[DynamoDB] Successfully scanned table",
		slog.String("table", table),
		slog.Int("count", len(*out)))
	return nil
}

// PutItems marshals items and writes them to table in batches of 25,
// retrying unprocessed items with exponential backoff.
func PutItems[T any](ctx context.Context, s *Store, table string, items []T) error {
	for i := 0; i < len(items); i += maxBatchSize {
		select {
		case <-ctx.Done():
			slog.Warn("[DynamoDB] context canceled")
			return ctx.Err()
		default:
		}

		end := i + maxBatchSize
		if end > len(items) {
			end = len(items)
		}

		writeRequests := make([]types.WriteRequest, 0, maxBatchSize)
		for _, item := range items[i:end] {
			av, err := attributevalue.MarshalMap(item)
			if err != nil {
				return fmt.Errorf("[DynamoDB] Failed to marshal item: %w", err)
			}
			writeRequests = append(writeRequests, types.WriteRequest{
				PutRequest: &types.PutRequest{Item: av},
			})
		}

		if err := s.batchWrite(ctx, table, writeRequests); err != nil {
			return err
		}
	}

	slog.Info("[DynamoDB] Successfully stored items",
		slog.String("table", table),
		slog.Int("count", len(items)))
	return nil
}

func (s *Store) batchWrite(ctx context.Context, table string, requests []types.WriteRequest) error {
	out, err := s.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
		RequestItems: map[string][]types.WriteRequest{
			table: requests,
		},
	})
	if err != nil {
		return fmt.Errorf("[DynamoDB] Failed to batch write %s: %w", table, err)
	}

	retryCount := 0
	backoff := s.backoff
	for len(out.UnprocessedItems) > 0 && retryCount < 3 {
		time.Sleep(backoff)
		backoff *= 2

		slog.Warn("[DynamoDB] Retrying unprocessed items...",
			slog.String("table", table),
			slog.Int("attempt", retryCount+1),
			slog.Int("remaining", len(out.UnprocessedItems[table])))

		out, err = s.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
			RequestItems: out.UnprocessedItems,
		})
		if err != nil {
			return fmt.Errorf("[DynamoDB] Retry error %w", err)
		}
		retryCount++
	}

	if len(out.UnprocessedItems) > 0 {
		return fmt.Errorf("[DynamoDB] %d items in %s were not written after retries",
			len(out.UnprocessedItems[table]), table)
	}
	return nil
}
