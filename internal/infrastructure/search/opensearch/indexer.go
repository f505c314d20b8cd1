package opensearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/opensearch-project/opensearch-go/v3"
	"github.com/opensearch-project/opensearch-go/v3/opensearchapi"

	"github.com/turtacn/MemberPulse-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MemberPulse-Intelligence/pkg/errors"
)

var (
	ErrIndexAlreadyExists  = errors.New(errors.ErrCodeConflict, "index already exists")
	ErrIndexNotFound       = errors.New(errors.ErrCodeNotFound, "index not found")
	ErrIndexCreationFailed = errors.New(errors.ErrCodeInternal, "index creation failed")
	ErrDocumentIndexFailed = errors.New(errors.ErrCodeInternal, "document index failed")
	ErrDocumentNotFound    = errors.New(errors.ErrCodeNotFound, "document not found")
)

// DefaultMessageIndex is the message index name without a prefix.
const DefaultMessageIndex = "chat-messages"

// MessageIndexName applies the configured index prefix.
func MessageIndexName(prefix string) string {
	if prefix == "" {
		return DefaultMessageIndex
	}
	return prefix + "-" + DefaultMessageIndex
}

// MessageDocument is one indexed chat message. ID becomes the document id
// and is not part of the source.
type MessageDocument struct {
	ID             string    `json:"-"`
	ConversationID string    `json:"conversation_id"`
	MemberID       string    `json:"member_id,omitempty"`
	SessionKey     string    `json:"session_key,omitempty"`
	Role           string    `json:"role"`
	Intent         string    `json:"intent,omitempty"`
	Tool           string    `json:"tool,omitempty"`
	Text           string    `json:"text"`
	CreatedAt      time.Time `json:"created_at"`
}

// BulkResult summarizes a bulk indexing run.
type BulkResult struct {
	Succeeded int
	Failed    int
	Errors    []BulkItemError
}

// BulkItemError describes one failed bulk item.
type BulkItemError struct {
	DocID     string
	ErrorType string
	Reason    string
}

// IndexerConfig holds indexing parameters.
type IndexerConfig struct {
	Index         string
	BulkBatchSize int
	RefreshPolicy string
}

// Indexer manages the message index and document ingestion.
type Indexer struct {
	client *Client
	config IndexerConfig
	logger logging.Logger
}

func NewIndexer(client *Client, cfg IndexerConfig, logger logging.Logger) *Indexer {
	if cfg.Index == "" {
		cfg.Index = DefaultMessageIndex
	}
	if cfg.BulkBatchSize == 0 {
		cfg.BulkBatchSize = 500
	}
	if cfg.RefreshPolicy == "" {
		cfg.RefreshPolicy = "false"
	}

	return &Indexer{
		client: client,
		config: cfg,
		logger: logger,
	}
}

// MessageIndexMapping is the mapping for the message index. Identifiers
// and labels are keywords; only the message text is analyzed.
func MessageIndexMapping() map[string]interface{} {
	return map[string]interface{}{
		"settings": map[string]interface{}{
			"number_of_shards":   1,
			"number_of_replicas": 1,
		},
		"mappings": map[string]interface{}{
			"properties": map[string]interface{}{
				"conversation_id": map[string]interface{}{"type": "keyword"},
				"member_id":       map[string]interface{}{"type": "keyword"},
				"session_key":     map[string]interface{}{"type": "keyword"},
				"role":            map[string]interface{}{"type": "keyword"},
				"intent":          map[string]interface{}{"type": "keyword"},
				"tool":            map[string]interface{}{"type": "keyword"},
				"text": map[string]interface{}{
					"type":     "text",
					"analyzer": "english",
				},
				"created_at": map[string]interface{}{"type": "date"},
			},
		},
	}
}

// EnsureMessageIndex creates the message index if it does not exist. Safe
// to call on every worker start.
func (i *Indexer) EnsureMessageIndex(ctx context.Context) error {
	exists, err := i.IndexExists(ctx, i.config.Index)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return i.CreateIndex(ctx, i.config.Index, MessageIndexMapping())
}

// CreateIndex creates an index with the given mapping.
func (i *Indexer) CreateIndex(ctx context.Context, indexName string, mapping map[string]interface{}) error {
	exists, err := i.IndexExists(ctx, indexName)
	if err != nil {
		return err
	}
	if exists {
		return ErrIndexAlreadyExists
	}

	body, err := json.Marshal(mapping)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal index mapping")
	}

	resp, err := i.client.exec(ctx, opensearchapi.IndicesCreateReq{
		Index: indexName,
		Body:  bytes.NewReader(body),
	}, nil)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to create index request")
	}
	defer resp.Body.Close()

	if resp.IsError() {
		return i.handleErrorResponse(resp, ErrIndexCreationFailed)
	}

	i.logger.Info("Index created", logging.String("index", indexName))
	return nil
}

// DeleteIndex removes an index and its documents.
func (i *Indexer) DeleteIndex(ctx context.Context, indexName string) error {
	resp, err := i.client.exec(ctx, opensearchapi.IndicesDeleteReq{
		Indices: []string{indexName},
	}, nil)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to delete index request")
	}
	defer resp.Body.Close()

	if resp.StatusCode == 404 {
		return ErrIndexNotFound
	}
	if resp.IsError() {
		return i.handleErrorResponse(resp, errors.New(errors.ErrCodeInternal, "delete index failed"))
	}

	i.logger.Warn("Index deleted", logging.String("index", indexName))
	return nil
}

// IndexExists reports whether the index exists.
func (i *Indexer) IndexExists(ctx context.Context, indexName string) (bool, error) {
	resp, err := i.client.exec(ctx, opensearchapi.IndicesExistsReq{
		Indices: []string{indexName},
	}, nil)
	if err != nil {
		return false, errors.Wrap(err, errors.ErrCodeInternal, "failed to check index existence")
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case 200:
		return true, nil
	case 404:
		return false, nil
	}
	return false, i.handleErrorResponse(resp, errors.New(errors.ErrCodeInternal, "check index existence failed"))
}

// IndexMessage indexes a single message document.
func (i *Indexer) IndexMessage(ctx context.Context, doc MessageDocument) error {
	if doc.ID == "" {
		return errors.New(errors.ErrCodeValidation, "document id is required")
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal document")
	}

	resp, err := i.client.exec(ctx, opensearchapi.IndexReq{
		Index:      i.config.Index,
		DocumentID: doc.ID,
		Body:       bytes.NewReader(body),
		Params:     opensearchapi.IndexParams{Refresh: i.config.RefreshPolicy},
	}, nil)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to index document request")
	}
	defer resp.Body.Close()

	if resp.IsError() {
		return i.handleErrorResponse(resp, ErrDocumentIndexFailed)
	}
	return nil
}

// BulkIndexMessages indexes documents in batches and reports per-document
// failures.
func (i *Indexer) BulkIndexMessages(ctx context.Context, docs []MessageDocument) (*BulkResult, error) {
	result := &BulkResult{}
	if len(docs) == 0 {
		return result, nil
	}

	for start := 0; start < len(docs); start += i.config.BulkBatchSize {
		end := start + i.config.BulkBatchSize
		if end > len(docs) {
			end = len(docs)
		}
		batch := docs[start:end]

		var buf bytes.Buffer
		for _, doc := range batch {
			meta := fmt.Sprintf(`{"index":{"_index":%q,"_id":%q}}`, i.config.Index, doc.ID)
			buf.WriteString(meta + "\n")

			docBytes, err := json.Marshal(doc)
			if err != nil {
				result.Failed++
				result.Errors = append(result.Errors, BulkItemError{
					DocID:     doc.ID,
					ErrorType: "serialization_error",
					Reason:    err.Error(),
				})
				continue
			}
			buf.Write(docBytes)
			buf.WriteString("\n")
		}
		if buf.Len() == 0 {
			continue
		}

		resp, err := i.client.exec(ctx, opensearchapi.BulkReq{
			Body:   bytes.NewReader(buf.Bytes()),
			Params: opensearchapi.BulkParams{Refresh: i.config.RefreshPolicy},
		}, nil)
		if err != nil {
			return result, errors.Wrap(err, errors.ErrCodeInternal, "bulk request failed")
		}

		batchResult, err := i.parseBulkResponse(resp)
		resp.Body.Close()
		if err != nil {
			return result, err
		}
		result.Succeeded += batchResult.Succeeded
		result.Failed += batchResult.Failed
		result.Errors = append(result.Errors, batchResult.Errors...)
	}

	i.logger.Info("Bulk index completed",
		logging.Int("total", len(docs)),
		logging.Int("succeeded", result.Succeeded),
		logging.Int("failed", result.Failed))

	return result, nil
}

// DeleteMessage removes one document.
func (i *Indexer) DeleteMessage(ctx context.Context, docID string) error {
	resp, err := i.client.exec(ctx, opensearchapi.DocumentDeleteReq{
		Index:      i.config.Index,
		DocumentID: docID,
		Params:     opensearchapi.DocumentDeleteParams{Refresh: i.config.RefreshPolicy},
	}, nil)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to delete document request")
	}
	defer resp.Body.Close()

	if resp.StatusCode == 404 {
		return ErrDocumentNotFound
	}
	if resp.IsError() {
		return i.handleErrorResponse(resp, errors.New(errors.ErrCodeInternal, "delete document failed"))
	}
	return nil
}

// DeleteByConversation removes every message of a pruned conversation.
func (i *Indexer) DeleteByConversation(ctx context.Context, conversationID string) (int64, error) {
	body, err := json.Marshal(map[string]interface{}{
		"query": map[string]interface{}{
			"term": map[string]interface{}{"conversation_id": conversationID},
		},
	})
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal delete query")
	}

	var deleteResp struct {
		Deleted int64 `json:"deleted"`
	}
	resp, err := i.client.exec(ctx, opensearchapi.DocumentDeleteByQueryReq{
		Indices: []string{i.config.Index},
		Body:    bytes.NewReader(body),
	}, &deleteResp)
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeInternal, "delete by query request failed")
	}
	defer resp.Body.Close()

	if resp.IsError() {
		return 0, i.handleErrorResponse(resp, errors.New(errors.ErrCodeInternal, "delete by query failed"))
	}
	return deleteResp.Deleted, nil
}

func (i *Indexer) parseBulkResponse(resp *opensearch.Response) (*BulkResult, error) {
	result := &BulkResult{}

	if resp.IsError() {
		return result, i.handleErrorResponse(resp, errors.New(errors.ErrCodeInternal, "bulk batch failed"))
	}

	var bulkResp struct {
		Errors bool `json:"errors"`
		Items  []map[string]struct {
			ID     string `json:"_id"`
			Status int    `json:"status"`
			Error  struct {
				Type   string `json:"type"`
				Reason string `json:"reason"`
			} `json:"error"`
		} `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&bulkResp); err != nil {
		return result, errors.Wrap(err, errors.ErrCodeSerialization, "failed to decode bulk response")
	}

	for _, item := range bulkResp.Items {
		// Each item has a single action key, usually "index".
		for _, info := range item {
			if info.Status >= 200 && info.Status < 300 {
				result.Succeeded++
			} else {
				result.Failed++
				result.Errors = append(result.Errors, BulkItemError{
					DocID:     info.ID,
					ErrorType: info.Error.Type,
					Reason:    info.Error.Reason,
				})
			}
			break
		}
	}
	return result, nil
}

func (i *Indexer) handleErrorResponse(resp *opensearch.Response, defaultErr error) error {
	var errResp struct {
		Error struct {
			Type   string `json:"type"`
			Reason string `json:"reason"`
		} `json:"error"`
	}
	bodyBytes, _ := io.ReadAll(resp.Body)

	if err := json.Unmarshal(bodyBytes, &errResp); err == nil && errResp.Error.Reason != "" {
		return errors.Wrap(defaultErr, errors.ErrCodeInternal,
			fmt.Sprintf("opensearch error: %s - %s", errResp.Error.Type, errResp.Error.Reason))
	}
	return errors.Wrap(defaultErr, errors.ErrCodeInternal,
		fmt.Sprintf("opensearch error status: %d", resp.StatusCode))
}
