// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package resolver_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	fleeterrors "github.com/gzh-fleet/gitfleet/pkg/errors"
	"github.com/gzh-fleet/gitfleet/pkg/provider"
	"github.com/gzh-fleet/gitfleet/pkg/provider/mock"
	"github.com/gzh-fleet/gitfleet/pkg/query"
	"github.com/gzh-fleet/gitfleet/pkg/resolver"
)

func repo(org, name, cloneURL string) provider.Repository {
	return provider.Repository{Organization: org, Name: name, CloneURL: cloneURL}
}

func TestResolve_DeduplicatesAcrossProviders(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	a := mock.NewMockProvider(ctrl)
	a.EXPECT().Name().Return("alpha").AnyTimes()
	a.EXPECT().ListRepositories(gomock.Any(), gomock.Any()).Return([]provider.Repository{
		repo("acme", "widgets", "https://a.example/acme/widgets.git"),
	}, nil)

	b := mock.NewMockProvider(ctrl)
	b.EXPECT().Name().Return("beta").AnyTimes()
	b.EXPECT().ListRepositories(gomock.Any(), gomock.Any()).Return([]provider.Repository{
		repo("ACME", "Widgets", "https://b.example/acme/widgets.git"), // same primary key, different clone URL
		repo("acme", "gadgets", "https://a.example/acme/gadgets.git"),
	}, nil)

	q := query.Analyze("acme/*/*", "")
	require.True(t, q.Valid())

	res, err := resolver.Resolve(context.Background(), []provider.Provider{a, b}, q, 0, 0)
	require.NoError(t, err)

	assert.Equal(t, 3, res.TotalFound)
	assert.Equal(t, 1, res.DuplicatesRemoved)
	assert.Len(t, res.Repositories, 2)
	assert.ElementsMatch(t, []string{"alpha", "beta"}, res.SuccessfulProviders)
	assert.Empty(t, res.FailedProviders)
}

func TestResolve_PartialProviderFailureIsTolerated(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ok := mock.NewMockProvider(ctrl)
	ok.EXPECT().Name().Return("ok-provider").AnyTimes()
	ok.EXPECT().ListRepositories(gomock.Any(), gomock.Any()).Return([]provider.Repository{
		repo("acme", "widgets", "https://example/acme/widgets.git"),
	}, nil)

	broken := mock.NewMockProvider(ctrl)
	broken.EXPECT().Name().Return("broken-provider").AnyTimes()
	broken.EXPECT().ListRepositories(gomock.Any(), gomock.Any()).Return(nil,
		fleeterrors.New(fleeterrors.KindNetwork, "connection refused").WithProvider("broken-provider"))

	q := query.Analyze("acme/*/*", "")
	require.True(t, q.Valid())

	res, err := resolver.Resolve(context.Background(), []provider.Provider{ok, broken}, q, 0, 0)
	require.NoError(t, err)

	require.Len(t, res.FailedProviders, 1)
	assert.Equal(t, "broken-provider", res.FailedProviders[0].Name)
	assert.Equal(t, fleeterrors.KindNetwork, res.FailedProviders[0].ErrorKind)
	assert.Equal(t, []string{"ok-provider"}, res.SuccessfulProviders)
	assert.Len(t, res.Repositories, 1)
}

func TestResolve_AllProvidersFailingIsResolutionFailed(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	broken := mock.NewMockProvider(ctrl)
	broken.EXPECT().Name().Return("broken-provider").AnyTimes()
	broken.EXPECT().ListRepositories(gomock.Any(), gomock.Any()).Return(nil,
		fleeterrors.New(fleeterrors.KindAuth, "bad credentials").WithProvider("broken-provider"))

	q := query.Analyze("acme/*/*", "")
	require.True(t, q.Valid())

	res, err := resolver.Resolve(context.Background(), []provider.Provider{broken}, q, 0, 0)
	require.Error(t, err)
	assert.Equal(t, fleeterrors.KindResolutionFail, fleeterrors.KindOf(err))
	assert.Empty(t, res.Repositories)
}

func TestResolve_ZeroResultsAllSuccessfulIsNotAnError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	empty := mock.NewMockProvider(ctrl)
	empty.EXPECT().Name().Return("empty-provider").AnyTimes()
	empty.EXPECT().ListRepositories(gomock.Any(), gomock.Any()).Return(nil, nil)

	q := query.Analyze("acme/*/*", "")
	require.True(t, q.Valid())

	res, err := resolver.Resolve(context.Background(), []provider.Provider{empty}, q, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, res.Repositories)
	assert.Equal(t, 0, res.TotalFound)
}

func TestResolve_LimitAppliesAfterDeduplication(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	a := mock.NewMockProvider(ctrl)
	a.EXPECT().Name().Return("alpha").AnyTimes()
	a.EXPECT().ListRepositories(gomock.Any(), gomock.Any()).Return([]provider.Repository{
		repo("acme", "one", "https://example/acme/one.git"),
		repo("acme", "two", "https://example/acme/two.git"),
		repo("acme", "one", "https://example/acme/one.git"), // duplicate within one provider's own results
	}, nil)

	q := query.Analyze("acme/*/*", "")
	require.True(t, q.Valid())

	res, err := resolver.Resolve(context.Background(), []provider.Provider{a}, q, 1, 0)
	require.NoError(t, err)

	assert.Equal(t, 3, res.TotalFound)
	assert.Equal(t, 1, res.DuplicatesRemoved)
	assert.Len(t, res.Repositories, 1)
}

func TestResolve_InvariantTotalFoundMinusDuplicatesEqualsResultLength(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	a := mock.NewMockProvider(ctrl)
	a.EXPECT().Name().Return("alpha").AnyTimes()
	a.EXPECT().ListRepositories(gomock.Any(), gomock.Any()).Return([]provider.Repository{
		repo("acme", "one", "https://example/acme/one.git"),
		repo("acme", "two", "https://example/acme/two.git"),
	}, nil)

	b := mock.NewMockProvider(ctrl)
	b.EXPECT().Name().Return("beta").AnyTimes()
	b.EXPECT().ListRepositories(gomock.Any(), gomock.Any()).Return([]provider.Repository{
		repo("acme", "one", "https://mirror.example/acme/one.git"),
	}, nil)

	q := query.Analyze("acme/*/*", "")
	require.True(t, q.Valid())

	res, err := resolver.Resolve(context.Background(), []provider.Provider{a, b}, q, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, len(res.Repositories), res.TotalFound-res.DuplicatesRemoved)
}
