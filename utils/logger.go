package utils

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LoggerOptions selects the level and optional Elasticsearch sink of the
// application logger.
type LoggerOptions struct {
	Level       string
	ElasticURL  string
	ServiceName string
}

// NewLogger builds the zap production logger. When ElasticURL is set the
// JSON lines are also indexed into Elasticsearch; the index name is taken
// from the "index" query parameter of the URL.
func NewLogger(opts LoggerOptions) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	if opts.Level != "" {
		level, err := zap.ParseAtomicLevel(opts.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
		config.Level = level
	}

	if opts.ElasticURL == "" {
		logger, err := config.Build()
		if err != nil {
			return nil, err
		}
		return logger.With(zap.String("service", opts.ServiceName)), nil
	}

	esWriter, err := newElasticWriter(opts.ElasticURL)
	if err != nil {
		return nil, err
	}

	encoder := zapcore.NewJSONEncoder(config.EncoderConfig)
	consoleCore := zapcore.NewCore(encoder, zapcore.Lock(zapcore.AddSync(os.Stdout)), config.Level)
	elasticCore := zapcore.NewCore(encoder, zapcore.AddSync(esWriter), config.Level)

	logger := zap.New(zapcore.NewTee(consoleCore, elasticCore), zap.AddCaller())
	return logger.With(zap.String("service", opts.ServiceName)), nil
}

// ElasticWriter implements zapcore.WriteSyncer by indexing each log line.
type ElasticWriter struct {
	client    *elasticsearch.Client
	indexName string
}

func newElasticWriter(elasticURL string) (*ElasticWriter, error) {
	u, err := url.Parse(elasticURL)
	if err != nil {
		return nil, fmt.Errorf("invalid elastic url: %w", err)
	}

	indexName := u.Query().Get("index")
	if indexName == "" {
		indexName = "courtmates-logs"
	}
	password, _ := u.User.Password()

	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{u.Scheme + "://" + u.Host},
		Username:  u.User.Username(),
		Password:  password,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create elastic client: %w", err)
	}

	return &ElasticWriter{client: client, indexName: indexName}, nil
}

func (ew *ElasticWriter) Write(p []byte) (int, error) {
	// zap reuses the buffer after Write returns
	body := bytes.Clone(p)

	res, err := ew.client.Index(
		ew.indexName,
		bytes.NewReader(body),
		ew.client.Index.WithContext(context.Background()),
		ew.client.Index.WithDocumentID(strconv.FormatInt(time.Now().UnixNano(), 10)),
	)
	if err != nil {
		return 0, err
	}
	defer res.Body.Close()

	if res.IsError() {
		return 0, fmt.Errorf("elastic index failed: %s", res.Status())
	}
	return len(p), nil
}

func (ew *ElasticWriter) Sync() error {
	return nil
}
