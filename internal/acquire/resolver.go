package acquire

import (
	"context"
	"errors"

	"spendbot/internal/port"
)

var errNoResolver = errors.New("no resolver for file reference")

// RouteResolver sends platform file ids to one resolver and externally supplied
// document ids to another.
type RouteResolver struct {
	Platform port.LinkResolver
	External port.LinkResolver
}

// Resolve implements port.LinkResolver. An external document id takes precedence.
func (r RouteResolver) Resolve(ctx context.Context, ref port.FileRef) (string, error) {
	switch {
	case ref.ExternalDocumentID != "" && r.External != nil:
		return r.External.Resolve(ctx, ref)
	case ref.PlatformFileID != "" && r.Platform != nil:
		return r.Platform.Resolve(ctx, ref)
	default:
		return "", errNoResolver
	}
}

// InboxResolver presigns downloads for documents dropped into an object storage inbox.
type InboxResolver struct {
	Storage       port.ObjectStorage
	Bucket        string
	Prefix        string
	ExpirySeconds int64
}

// Resolve implements port.LinkResolver.
func (r InboxResolver) Resolve(ctx context.Context, ref port.FileRef) (string, error) {
	return r.Storage.GetPresignedURL(ctx, r.Bucket, r.Prefix+ref.ExternalDocumentID, r.ExpirySeconds)
}
