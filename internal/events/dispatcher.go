package events

import (
	"context"
	"fmt"
	"strings"

	"github.com/adevara/docqa/internal/api"
	"github.com/adevara/docqa/internal/config"
	"github.com/adevara/docqa/internal/domain/faults"
	"github.com/adevara/docqa/pkg/logger_i"
)

// Event types are matched on their suffix so provider namespace prefixes
// stay out of the dispatch logic.
const (
	suffixValidation  = "SubscriptionValidationEvent"
	suffixBlobCreated = "BlobCreated"
	suffixBlobDeleted = "BlobDeleted"
)

// Ingestor is the slice of the ingestion pipeline the dispatcher drives.
type Ingestor interface {
	Reindex(ctx context.Context, docName string) error
	Remove(ctx context.Context, docName string) error
}

type Dispatcher struct {
	pipeline Ingestor
	logger   *logger_i.Logger
}

func NewDispatcher(pipeline Ingestor) *Dispatcher {
	return &Dispatcher{
		pipeline: pipeline,
		logger:   logger_i.NewLogger("Event Dispatcher"),
	}
}

// Dispatch processes a batch of change notifications, each independently: a
// failing event is collected and its siblings still run. A validation
// handshake event produces the echo response and touches no pipeline state.
func (d *Dispatcher) Dispatch(ctx context.Context, events []api.ChangeEvent) (*api.ValidationResponse, []error) {
	log := d.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	var validation *api.ValidationResponse
	var failures []error

	for i, event := range events {
		if err := d.dispatchOne(ctx, log, event, &validation); err != nil {
			log.Error("Event processing failed", "index", i, "eventType", event.EventType, "error", err)
			failures = append(failures, fmt.Errorf("event %d (%s): %w", i, event.EventType, err))
		}
	}
	return validation, failures
}

func (d *Dispatcher) dispatchOne(ctx context.Context, log *logger_i.Logger, event api.ChangeEvent, validation **api.ValidationResponse) error {
	switch {
	case strings.HasSuffix(event.EventType, suffixValidation):
		if event.Data.ValidationCode == "" {
			return faults.New(faults.Event, "validation event without validationCode")
		}
		log.Info("Validating event subscription")
		*validation = &api.ValidationResponse{ValidationResponse: event.Data.ValidationCode}
		return nil

	case strings.HasSuffix(event.EventType, suffixBlobCreated):
		docName, err := docNameFromURL(event.Data.URL)
		if err != nil {
			return err
		}
		if !strings.HasSuffix(strings.ToLower(docName), config.SupportedIngestExt) {
			log.Info("Skipping unsupported document type", "doc", docName)
			return nil
		}
		log.Info("Processing document", "doc", docName)
		return d.pipeline.Reindex(ctx, docName)

	case strings.HasSuffix(event.EventType, suffixBlobDeleted):
		docName, err := docNameFromURL(event.Data.URL)
		if err != nil {
			return err
		}
		log.Info("Deleting document chunks", "doc", docName)
		return d.pipeline.Remove(ctx, docName)

	default:
		log.Debug("Ignoring event", "eventType", event.EventType)
		return nil
	}
}

// docNameFromURL takes the final path segment of the blob URL.
func docNameFromURL(url string) (string, error) {
	if url == "" {
		return "", faults.New(faults.Event, "blob event without url")
	}
	segments := strings.Split(url, "/")
	name := segments[len(segments)-1]
	if name == "" {
		return "", faults.New(faults.Event, "blob url has no document name")
	}
	return name, nil
}
