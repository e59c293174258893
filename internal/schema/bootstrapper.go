// Package schema makes sure the "Translation" content type exists and is
// published in a content-management space.
package schema

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"lingua/cmsinit/internal/cma"
)

const (
	// ContentTypeName is the name the existence check matches on, exactly
	// and case-sensitively.
	ContentTypeName = "Translation"
	// ContentTypeID is the id the content type is created under. It equals
	// the name so the type can be fetched back by name.
	ContentTypeID = ContentTypeName

	dictionaryFieldID   = "dictionary"
	dictionaryFieldName = "Dictionary"
)

// ManagementClient is satisfied by *cma.Client.
type ManagementClient interface {
	ListContentTypes(ctx context.Context, spaceID string) ([]cma.ContentType, error)
	CreateContentType(ctx context.Context, spaceID string, ct cma.ContentType) *cma.Creation
	FetchContentType(ctx context.Context, spaceID, id string) (cma.ContentType, error)
	PublishContentType(ctx context.Context, spaceID string, ct cma.ContentType) (cma.ContentType, error)
}

// Bootstrapper creates and publishes the Translation content type in one
// space when it is missing.
type Bootstrapper struct {
	client  ManagementClient
	spaceID string
	tracer  trace.Tracer
}

// NewBootstrapper returns a Bootstrapper for spaceID. It makes no calls.
func NewBootstrapper(client ManagementClient, spaceID string) *Bootstrapper {
	return &Bootstrapper{
		client:  client,
		spaceID: spaceID,
		tracer:  otel.Tracer("lingua/cmsinit/schema"),
	}
}

// Definition returns the content type the bootstrapper creates.
func Definition() cma.ContentType {
	return cma.ContentType{
		Sys:  cma.Sys{ID: ContentTypeID},
		Name: ContentTypeName,
		Fields: []cma.Field{
			{
				ID:       dictionaryFieldID,
				Name:     dictionaryFieldName,
				Type:     cma.FieldTypeObject,
				Required: true,
			},
		},
	}
}

// Initialize checks the space for the Translation content type and, when it
// is absent, dispatches its creation and returns without waiting. Publishing
// is chained onto the creation and runs under ctx; the returned Run reports
// how that ended.
//
// A failed existence check is returned as a KindConfiguration *Error and no
// further calls are made.
func (b *Bootstrapper) Initialize(ctx context.Context) (*Run, error) {
	ctx, span := b.tracer.Start(ctx, "schema.initialize",
		trace.WithAttributes(attribute.String("cms.content_type", ContentTypeName)))
	defer span.End()

	existing, found, err := b.find(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "existence check failed")
		return nil, err
	}

	if found {
		slog.InfoContext(ctx, "content type already exists; skipping initialization",
			"content_type", ContentTypeName, "status", existing.Status())
		span.SetAttributes(attribute.String("cms.outcome", string(OutcomeExisting)))
		return completedRun(OutcomeExisting, existing), nil
	}

	run := newRun(OutcomeCreated)
	creation := b.createSchema(ctx)

	go b.publishOnCreate(ctx, creation, run)

	span.SetAttributes(attribute.String("cms.outcome", string(OutcomeCreated)))
	return run, nil
}

// Exists reports whether a content type named ContentTypeName is defined in
// the space. A failed check is a KindConfiguration *Error, never a plain
// "not found".
func (b *Bootstrapper) Exists(ctx context.Context) (bool, error) {
	_, found, err := b.find(ctx)
	return found, err
}

func (b *Bootstrapper) find(ctx context.Context) (cma.ContentType, bool, error) {
	types, err := b.client.ListContentTypes(ctx, b.spaceID)
	if err != nil {
		return cma.ContentType{}, false, configurationError("check", err)
	}
	for _, ct := range types {
		if ct.Name == ContentTypeName {
			return ct, true, nil
		}
	}
	return cma.ContentType{}, false, nil
}

func (b *Bootstrapper) createSchema(ctx context.Context) *cma.Creation {
	slog.InfoContext(ctx, "creating content type", "content_type", ContentTypeName, "space_id", b.spaceID)
	return b.client.CreateContentType(ctx, b.spaceID, Definition())
}

// publishSchema fetches the current revision of the content type and
// publishes it.
func (b *Bootstrapper) publishSchema(ctx context.Context) (cma.ContentType, error) {
	ctx, span := b.tracer.Start(ctx, "schema.publish")
	defer span.End()

	current, err := b.client.FetchContentType(ctx, b.spaceID, ContentTypeID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		return cma.ContentType{}, initializationError("publish", err)
	}

	published, err := b.client.PublishContentType(ctx, b.spaceID, current)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "publish failed")
		return cma.ContentType{}, initializationError("publish", err)
	}

	slog.InfoContext(ctx, "published content type",
		"content_type", ContentTypeName, "version", published.Sys.Version)
	return published, nil
}

// publishOnCreate waits for the creation and publishes the new draft. It
// gives up when ctx is done.
func (b *Bootstrapper) publishOnCreate(ctx context.Context, creation *cma.Creation, run *Run) {
	var (
		ct  cma.ContentType
		err error
	)
	defer func() { run.finish(ct, err) }()

	select {
	case <-creation.Done():
	case <-ctx.Done():
		err = initializationError("create", ctx.Err())
		return
	}

	if _, createErr := creation.Result(); createErr != nil {
		slog.WarnContext(ctx, "creating content type failed", "content_type", ContentTypeName, "error", createErr)
		err = initializationError("create", createErr)
		return
	}
	slog.InfoContext(ctx, "created content type", "content_type", ContentTypeName)

	// New content types start as drafts.
	ct, err = b.publishSchema(ctx)
}
