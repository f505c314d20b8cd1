package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/MemberPulse-Intelligence/internal/infrastructure/genai"
	"github.com/turtacn/MemberPulse-Intelligence/internal/infrastructure/search/milvus"
	"github.com/turtacn/MemberPulse-Intelligence/internal/intelligence/faq"
	"github.com/turtacn/MemberPulse-Intelligence/pkg/errors"
)

// NewCorpusCmd creates the corpus command group for working with FAQ
// corpus files.
func NewCorpusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "corpus",
		Short: "Work with FAQ corpus files",
	}

	cmd.AddCommand(
		newCorpusValidateCmd(),
		newCorpusSyncCmd(),
	)

	return cmd
}

// newCorpusValidateCmd validates a corpus file the same way the server
// does at load time, so a broken file is caught before deployment.
func newCorpusValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Validate a FAQ corpus file",
		Long:  "Loads a YAML or JSON corpus file through the same parser and\nvalidation the server uses, reporting duplicate keys, empty keyword\nsets and other defects before the file reaches a deployment.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCorpusValidate(cmd, args[0])
		},
	}
}

// newCorpusSyncCmd embeds a corpus file and upserts it into the vector
// store, so semantic retrieval serves the same answers the keyword
// fast-path does. Like migrate, it talks to the backends directly.
func newCorpusSyncCmd() *cobra.Command {
	var batch int

	cmd := &cobra.Command{
		Use:   "sync <file>",
		Short: "Embed a corpus file into the vector store",
		Long:  "Loads a corpus file, embeds every entry through the configured\nembedding provider and upserts the vectors into the corpus collection,\ncreating the collection on first run. Requires genai.enabled and a\nreachable vector store.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCorpusSync(cmd, args[0], batch)
		},
	}

	cmd.Flags().IntVar(&batch, "batch", 64, "texts embedded per provider call")

	return cmd
}

func runCorpusSync(cmd *cobra.Command, path string, batch int) error {
	if batch < 1 {
		return errors.Newf(errors.ErrCodeValidation, "batch must be at least 1, got %d", batch)
	}

	corpus, err := faq.LoadFile(path)
	if err != nil {
		return err
	}
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if !cfg.GenAI.Enabled {
		return errors.New(errors.ErrCodeValidation,
			"generation is disabled in configuration, sync needs an embedding provider")
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), cliCtx.Timeout)
	defer cancel()

	embedder := genai.NewOpenAIProvider(cfg.GenAI, cliCtx.Logger)
	vectors, err := embedEntries(ctx, embedder, corpus.Entries(), batch)
	if err != nil {
		return err
	}

	store, err := milvus.NewClient(milvus.ClientConfig{
		Address: cfg.Milvus.Addr,
		DBName:  cfg.Milvus.DBName,
	}, cliCtx.Logger)
	if err != nil {
		return err
	}
	defer store.Close()

	manager := milvus.NewCollectionManager(store, milvus.CollectionConfig{
		HNSWM:           cfg.Milvus.HNSWM,
		HNSWEfConstruct: cfg.Milvus.HNSWEfConstruction,
	}, cliCtx.Logger)
	if err := manager.EnsureCorpusCollection(ctx, len(vectors[0].Embedding)); err != nil {
		return err
	}

	if err := milvus.NewVectorStore(store, milvus.SearcherConfig{}, cliCtx.Logger).Upsert(ctx, vectors); err != nil {
		return err
	}

	if cliCtx.OutputFormat == "json" {
		return PrintResult(cmd, map[string]interface{}{
			"synced":     len(vectors),
			"collection": milvus.CorpusCollection,
			"dimension":  len(vectors[0].Embedding),
		})
	}

	PrintSuccess(cmd, fmt.Sprintf("synced %d entries into %s", len(vectors), milvus.CorpusCollection))
	return nil
}

// embedEntries turns corpus entries into vectors. The embedded text joins
// the keywords with the answer so a query matches on either phrasing.
func embedEntries(ctx context.Context, embedder genai.Provider, entries []faq.Entry, batch int) ([]milvus.CorpusVector, error) {
	texts := make([]string, len(entries))
	for i, e := range entries {
		texts[i] = strings.Join(e.Keywords, ", ") + "\n" + e.Answer
	}

	vectors := make([]milvus.CorpusVector, 0, len(entries))
	for start := 0; start < len(texts); start += batch {
		end := start + batch
		if end > len(texts) {
			end = len(texts)
		}
		embeddings, err := embedder.Embed(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		if len(embeddings) != end-start {
			return nil, errors.Newf(errors.ErrCodeExternalService,
				"embedding provider returned %d vectors for %d texts", len(embeddings), end-start)
		}
		for i, emb := range embeddings {
			entry := entries[start+i]
			vectors = append(vectors, milvus.CorpusVector{
				ID:        entry.Key,
				Kind:      milvus.KindFAQ,
				Intent:    entry.Key,
				Text:      entry.Answer,
				Embedding: emb,
			})
		}
	}
	return vectors, nil
}

func runCorpusValidate(cmd *cobra.Command, path string) error {
	corpus, err := faq.LoadFile(path)
	if err != nil {
		return err
	}

	cliCtx, ctxErr := GetCLIContext(cmd)
	if ctxErr == nil && cliCtx.OutputFormat == "json" {
		return PrintResult(cmd, map[string]interface{}{
			"valid":   true,
			"path":    path,
			"entries": corpus.Len(),
			"keys":    corpus.Keys(),
		})
	}

	PrintSuccess(cmd, fmt.Sprintf("%s is valid (%d entries)", path, corpus.Len()))
	if ctxErr == nil && cliCtx.Verbose {
		fmt.Fprintf(cmd.OutOrStdout(), "keys: %s\n", strings.Join(corpus.Keys(), ", "))
	}
	return nil
}
