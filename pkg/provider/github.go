// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/go-github/v66/github"
	"golang.org/x/oauth2"

	fleeterrors "github.com/gzh-fleet/gitfleet/pkg/errors"
	"github.com/gzh-fleet/gitfleet/pkg/query"
)

// GitHubAdapter implements Provider against the GitHub REST API via
// google/go-github. Hierarchy is owner -> repository; the middle segment is
// ignored (always treated as "*") per §4.C. Owner may be a user or an
// organization — ListRepositories probes both, since the API distinguishes
// them and a configured owner's kind is not known up front.
type GitHubAdapter struct {
	name   string
	client *github.Client
}

// NewGitHubAdapter builds a GitHub adapter for the named provider instance.
// baseURL is only honored for GitHub Enterprise Server; an empty baseURL
// targets github.com.
func NewGitHubAdapter(name, baseURL, token string) (*GitHubAdapter, error) {
	oauthClient := oauth2.NewClient(context.Background(), oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	))
	oauthClient.Timeout = DefaultRequestTimeout
	client := github.NewClient(oauthClient)

	if baseURL != "" && baseURL != "https://github.com" {
		var err error
		client, err = client.WithEnterpriseURLs(baseURL, baseURL)
		if err != nil {
			return nil, fmt.Errorf("configuring github enterprise client: %w", err)
		}
	}

	return &GitHubAdapter{name: name, client: client}, nil
}

func (a *GitHubAdapter) Name() string { return a.name }

func (a *GitHubAdapter) Authenticate(ctx context.Context) error {
	_, _, err := a.client.Users.Get(ctx, "")
	if err != nil {
		return fleeterrors.Wrap(fleeterrors.KindAuth, err, "github authentication failed").WithProvider(a.name)
	}
	return nil
}

func (a *GitHubAdapter) ListOrganizations(ctx context.Context) ([]string, error) {
	var names []string
	opts := &github.ListOptions{PerPage: 100}
	for {
		orgs, resp, err := a.client.Organizations.List(ctx, "", opts)
		if err != nil {
			return nil, WrapHTTPError(a.name, "list_organizations", statusCode(resp), err)
		}
		for _, o := range orgs {
			names = append(names, o.GetLogin())
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return names, nil
}

// ListProjects returns the sentinel "*" — GitHub has no project concept.
func (a *GitHubAdapter) ListProjects(ctx context.Context, organization string) ([]string, error) {
	return []string{"*"}, nil
}

func (a *GitHubAdapter) ListRepositories(ctx context.Context, opts ListOptions) ([]Repository, error) {
	if query.IsPattern(opts.OrgPattern) {
		return a.listRepositoriesByPattern(ctx, opts)
	}
	return a.listForOwner(ctx, opts.OrgPattern, opts.RepoPattern)
}

func (a *GitHubAdapter) listRepositoriesByPattern(ctx context.Context, opts ListOptions) ([]Repository, error) {
	owners, err := a.ListOrganizations(ctx)
	if err != nil {
		return nil, err
	}
	var all []Repository
	for _, owner := range owners {
		if !query.Matches(opts.OrgPattern, owner) {
			continue
		}
		repos, err := a.listForOwner(ctx, owner, opts.RepoPattern)
		if err != nil {
			return nil, err
		}
		all = append(all, repos...)
	}
	return all, nil
}

// listForOwner lists every repository for a literal owner (user or org,
// probing both since the API distinguishes them) and client-side filters by
// the repo glob.
func (a *GitHubAdapter) listForOwner(ctx context.Context, owner, repoPattern string) ([]Repository, error) {
	repos, err := a.listByOrg(ctx, owner)
	if err != nil {
		if fleeterrors.KindOf(err) == fleeterrors.KindNotFound {
			repos, err = a.listByUser(ctx, owner)
		}
		if err != nil {
			return nil, err
		}
	}

	var out []Repository
	for _, r := range repos {
		if repoPattern != "" && !query.Matches(repoPattern, r.Name) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (a *GitHubAdapter) listByOrg(ctx context.Context, org string) ([]Repository, error) {
	var out []Repository
	opts := &github.RepositoryListByOrgOptions{ListOptions: github.ListOptions{PerPage: 100}}
	for {
		repos, resp, err := a.client.Repositories.ListByOrg(ctx, org, opts)
		if err != nil {
			return nil, WrapHTTPError(a.name, "list_repositories", statusCode(resp), err)
		}
		out = append(out, toRepositories(a.name, repos)...)
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return out, nil
}

func (a *GitHubAdapter) listByUser(ctx context.Context, user string) ([]Repository, error) {
	var out []Repository
	opts := &github.RepositoryListByUserOptions{ListOptions: github.ListOptions{PerPage: 100}}
	for {
		repos, resp, err := a.client.Repositories.ListByUser(ctx, user, opts)
		if err != nil {
			return nil, WrapHTTPError(a.name, "list_repositories", statusCode(resp), err)
		}
		out = append(out, toRepositories(a.name, repos)...)
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return out, nil
}

func toRepositories(providerName string, repos []*github.Repository) []Repository {
	out := make([]Repository, 0, len(repos))
	for _, r := range repos {
		out = append(out, Repository{
			Organization:  r.GetOwner().GetLogin(),
			Name:          r.GetName(),
			CloneURL:      r.GetCloneURL(),
			DefaultBranch: r.GetDefaultBranch(),
			IsPrivate:     r.GetPrivate(),
			Description:   r.GetDescription(),
			ProviderName:  providerName,
			Metadata: map[string]interface{}{
				"stargazers_count": r.GetStargazersCount(),
				"archived":         r.GetArchived(),
				"fork":             r.GetFork(),
			},
		})
	}
	return out
}

func (a *GitHubAdapter) NormalizeCloneURL(url string, creds Credentials) string {
	if creds.Secret == "" {
		return url
	}
	// https://<token>@github.com/owner/repo.git
	return strings.Replace(url, "https://", fmt.Sprintf("https://%s@", creds.Secret), 1)
}

func statusCode(resp *github.Response) int {
	if resp == nil || resp.Response == nil {
		return 0
	}
	return resp.StatusCode
}
