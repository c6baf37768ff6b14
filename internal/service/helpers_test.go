package service

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/cms-admin/internal/domain"
	"github.com/spec-kit/cms-admin/internal/repository"
	apperrors "github.com/spec-kit/cms-admin/pkg/util"
)

func memoryStores() repository.Stores {
	return repository.Stores{
		Users:          repository.NewUserRepository(repository.NewMemoryCollection[domain.User](domain.CollectionUsers)),
		Posts:          repository.NewMemoryCollection[domain.Post](domain.CollectionPosts),
		Pages:          repository.NewMemoryCollection[domain.Page](domain.CollectionPages),
		Categories:     repository.NewMemoryCollection[domain.Category](domain.CollectionCategories),
		Apps:           repository.NewMemoryCollection[domain.App](domain.CollectionApps),
		Media:          repository.NewMemoryCollection[domain.Media](domain.CollectionMedia),
		Settings:       repository.NewMemoryCollection[domain.Setting](domain.CollectionSettings),
		SitemapEntries: repository.NewMemoryCollection[domain.SitemapEntry](domain.CollectionSitemapEntries),
		Homepage:       repository.NewMemoryCollection[domain.Homepage](domain.CollectionHomepage),
	}
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, code, apperrors.ToDomainError(err).Code)
}
