package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
	"github.com/scanstack-io/Scantree/internal/modules/model"
	"github.com/scanstack-io/Scantree/internal/modules/repo"
	"go.uber.org/zap"
)

// containerCacheTTL bounds how stale a cached container view may get.
const containerCacheTTL = 30 * time.Second

// ReferenceResolver looks up containers by (type, id) and checks user access
// against their permission lists. It performs no writes; the optional redis
// client adds a transparent read-through cache.
type ReferenceResolver struct {
	containers repo.ContainerRepo
	cache      *redis.Client
	log        *zap.Logger
}

func NewReferenceResolver(containers repo.ContainerRepo, cache *redis.Client, log *zap.Logger) *ReferenceResolver {
	return &ReferenceResolver{containers: containers, cache: cache, log: log}
}

// Resolve returns the container document for (containerType, id).
// containerType must be singular; the plural form names the collection.
func (r *ReferenceResolver) Resolve(ctx context.Context, containerType, id string) (*model.ContainerDoc, error) {
	if strings.HasSuffix(containerType, "s") {
		return nil, ErrPluralContainerType
	}

	key := "container:" + containerType + ":" + id
	if r.cache != nil {
		if raw, err := r.cache.Get(ctx, key).Bytes(); err == nil {
			var doc model.ContainerDoc
			if err := sonic.Unmarshal(raw, &doc); err == nil {
				return &doc, nil
			}
		}
	}

	doc, err := r.containers.Resolve(ctx, containerType, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if r.cache != nil {
		if raw, err := sonic.Marshal(doc); err == nil {
			if err := r.cache.Set(ctx, key, raw, containerCacheTTL).Err(); err != nil {
				r.log.Debug("container cache set failed", zap.Error(err))
			}
		}
	}
	return doc, nil
}

// CheckAccess succeeds only when userID holds a permission on the container
// whose rank is strictly greater than requiredAccess — meeting the requirement
// is not enough. A missing entry is ErrForbidden.
func (r *ReferenceResolver) CheckAccess(userID string, doc *model.ContainerDoc, requiredAccess string) error {
	required, ok := model.AccessRank(requiredAccess)
	if !ok {
		return ErrForbidden
	}
	for _, p := range doc.Permissions {
		if p.ID != userID {
			continue
		}
		if held, ok := model.AccessRank(p.Access); ok && held > required {
			return nil
		}
	}
	return ErrForbidden
}
