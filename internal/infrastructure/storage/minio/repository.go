package minio

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"

	"github.com/turtacn/MemberPulse-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MemberPulse-Intelligence/pkg/errors"
)

var (
	ErrReportNotFound = errors.New(errors.ErrCodeNotFound, "report not found")
	ErrInvalidReport  = errors.New(errors.ErrCodeValidation, "invalid report")
)

const (
	reportPrefix      = "reports"
	reportContentType = "text/markdown"
)

// ReportKey builds the archive object key for a report generated at the
// given time.
func ReportKey(at time.Time, id string) string {
	return fmt.Sprintf("%s/%s/%s.md", reportPrefix, at.UTC().Format("2006/01/02"), id)
}

// DayPrefix is the key prefix holding one day's reports.
func DayPrefix(day time.Time) string {
	return fmt.Sprintf("%s/%s/", reportPrefix, day.UTC().Format("2006/01/02"))
}

// Report is a rendered markdown report to archive.
type Report struct {
	ID          string
	Title       string
	Period      string
	GeneratedAt time.Time
	Content     []byte
}

// StoredReport describes an archived report. Content is populated by
// Fetch only.
type StoredReport struct {
	Key          string
	Title        string
	Period       string
	Size         int64
	ETag         string
	LastModified time.Time
	Content      []byte
}

// ReportArchive stores and retrieves rendered reports.
type ReportArchive interface {
	Archive(ctx context.Context, report Report) (*StoredReport, error)
	Fetch(ctx context.Context, key string) (*StoredReport, error)
	ListDay(ctx context.Context, day time.Time) ([]*StoredReport, error)
	ListRange(ctx context.Context, from, to time.Time) ([]*StoredReport, error)
	Delete(ctx context.Context, key string) error
	PresignDownload(ctx context.Context, key string, expiry time.Duration) (string, error)
}

type reportArchive struct {
	client *Client
	logger logging.Logger
}

func NewReportArchive(client *Client, log logging.Logger) ReportArchive {
	return &reportArchive{
		client: client,
		logger: log,
	}
}

// Archive writes the report under reports/YYYY/MM/DD/<id>.md with its
// title and period as object metadata.
func (a *reportArchive) Archive(ctx context.Context, report Report) (*StoredReport, error) {
	if report.ID == "" || len(report.Content) == 0 {
		return nil, ErrInvalidReport
	}
	at := report.GeneratedAt
	if at.IsZero() {
		at = time.Now()
	}
	key := ReportKey(at, report.ID)

	meta := map[string]string{}
	if report.Title != "" {
		meta["title"] = report.Title
	}
	if report.Period != "" {
		meta["period"] = report.Period
	}

	info, err := a.client.GetClient().PutObject(ctx, a.client.Bucket(), key,
		strings.NewReader(string(report.Content)), int64(len(report.Content)),
		minio.PutObjectOptions{
			ContentType:  reportContentType,
			UserMetadata: meta,
		})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to archive report")
	}

	a.logger.Info("Report archived",
		logging.String("key", key),
		logging.Int64("size", info.Size))

	return &StoredReport{
		Key:          key,
		Title:        report.Title,
		Period:       report.Period,
		Size:         info.Size,
		ETag:         info.ETag,
		LastModified: at,
	}, nil
}

// Fetch reads one archived report including its content.
func (a *reportArchive) Fetch(ctx context.Context, key string) (*StoredReport, error) {
	obj, err := a.client.GetClient().GetObject(ctx, a.client.Bucket(), key, minio.GetObjectOptions{})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to fetch report")
	}
	defer obj.Close()

	stat, err := obj.Stat()
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, ErrReportNotFound
		}
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to stat report")
	}

	content, err := io.ReadAll(obj)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to read report")
	}

	return &StoredReport{
		Key:          key,
		Title:        stat.UserMetadata["Title"],
		Period:       stat.UserMetadata["Period"],
		Size:         stat.Size,
		ETag:         stat.ETag,
		LastModified: stat.LastModified,
		Content:      content,
	}, nil
}

// ListDay lists the reports archived on one day, oldest first.
func (a *reportArchive) ListDay(ctx context.Context, day time.Time) ([]*StoredReport, error) {
	return a.list(ctx, DayPrefix(day))
}

// ListRange lists reports across the days of [from, to].
func (a *reportArchive) ListRange(ctx context.Context, from, to time.Time) ([]*StoredReport, error) {
	if to.Before(from) {
		return nil, errors.New(errors.ErrCodeValidation, "range end precedes start")
	}

	var all []*StoredReport
	for day := from.UTC().Truncate(24 * time.Hour); !day.After(to.UTC()); day = day.AddDate(0, 0, 1) {
		reports, err := a.list(ctx, DayPrefix(day))
		if err != nil {
			return nil, err
		}
		all = append(all, reports...)
	}
	return all, nil
}

func (a *reportArchive) list(ctx context.Context, prefix string) ([]*StoredReport, error) {
	ch := a.client.GetClient().ListObjects(ctx, a.client.Bucket(), minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	})

	var reports []*StoredReport
	for obj := range ch {
		if obj.Err != nil {
			return nil, errors.Wrap(obj.Err, errors.ErrCodeInternal, "failed to list reports")
		}
		reports = append(reports, &StoredReport{
			Key:          obj.Key,
			Size:         obj.Size,
			ETag:         obj.ETag,
			LastModified: obj.LastModified,
		})
	}
	return reports, nil
}

// Delete removes one archived report.
func (a *reportArchive) Delete(ctx context.Context, key string) error {
	if err := a.client.GetClient().RemoveObject(ctx, a.client.Bucket(), key, minio.RemoveObjectOptions{}); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to delete report")
	}
	return nil
}

// PresignDownload returns a time-limited link to one report.
func (a *reportArchive) PresignDownload(ctx context.Context, key string, expiry time.Duration) (string, error) {
	_, err := a.client.GetClient().StatObject(ctx, a.client.Bucket(), key, minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return "", ErrReportNotFound
		}
		return "", errors.Wrap(err, errors.ErrCodeInternal, "failed to stat report")
	}
	return a.client.PresignedGetURL(ctx, key, expiry)
}
