// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	fleeterrors "github.com/gzh-fleet/gitfleet/pkg/errors"
	"github.com/gzh-fleet/gitfleet/pkg/query"
)

// BitBucketAdapter implements Provider against the BitBucket Cloud REST API
// (api.bitbucket.org/2.0). Hierarchy is workspace -> repository; the middle
// segment is ignored, same as GitHub, per §4.C. The workspace may come from
// configuration or from the first query segment.
//
// Open question carried from §9: a middle segment that happens to name a
// real BitBucket project is silently ignored rather than rejected or used
// to filter — this adapter preserves that source behavior.
type BitBucketAdapter struct {
	name      string
	workspace string
	user      string
	appPass   string
	http      *http.Client
}

func NewBitBucketAdapter(name, workspace, user, appPassword string) *BitBucketAdapter {
	return &BitBucketAdapter{
		name:      name,
		workspace: workspace,
		user:      user,
		appPass:   appPassword,
		http:      &http.Client{Timeout: DefaultRequestTimeout},
	}
}

func (a *BitBucketAdapter) Name() string { return a.name }

func (a *BitBucketAdapter) Authenticate(ctx context.Context) error {
	_, err := a.get(ctx, fmt.Sprintf("https://api.bitbucket.org/2.0/workspaces/%s", a.workspace))
	if err != nil {
		return fleeterrors.Wrap(fleeterrors.KindAuth, err, "bitbucket authentication failed").WithProvider(a.name)
	}
	return nil
}

// ListOrganizations is not supported: a BitBucket adapter instance is scoped
// to a single configured workspace.
func (a *BitBucketAdapter) ListOrganizations(ctx context.Context) ([]string, error) {
	return nil, fleeterrors.New(fleeterrors.KindValidation, "bitbucket adapter is workspace-scoped; list_organizations is not supported").WithProvider(a.name)
}

// ListProjects returns the sentinel "*" — the middle segment is ignored for
// BitBucket per §4.C, even though BitBucket does have a "project" concept
// server-side; see the open question in §9.
func (a *BitBucketAdapter) ListProjects(ctx context.Context, organization string) ([]string, error) {
	return []string{"*"}, nil
}

type bbRepoPage struct {
	Next   string `json:"next"`
	Values []struct {
		Name        string `json:"name"`
		FullName    string `json:"full_name"`
		IsPrivate   bool   `json:"is_private"`
		Description string `json:"description"`
		UUID        string `json:"uuid"`
		Workspace   struct {
			UUID string `json:"uuid"`
		} `json:"workspace"`
		Mainbranch struct {
			Name string `json:"name"`
		} `json:"mainbranch"`
		Links struct {
			Clone []struct {
				Name string `json:"name"`
				Href string `json:"href"`
			} `json:"clone"`
		} `json:"links"`
	} `json:"values"`
}

func (a *BitBucketAdapter) ListRepositories(ctx context.Context, opts ListOptions) ([]Repository, error) {
	workspace := a.workspace
	if workspace == "" {
		workspace = opts.OrgPattern
	}
	if query.IsPattern(workspace) {
		return nil, fleeterrors.New(fleeterrors.KindValidation, "bitbucket workspace must be a literal, not a pattern; configure it or set --provider").WithProvider(a.name)
	}

	var all []Repository
	url := fmt.Sprintf("https://api.bitbucket.org/2.0/repositories/%s?pagelen=100", workspace)
	for url != "" {
		body, err := a.get(ctx, url)
		if err != nil {
			return nil, err
		}
		var page bbRepoPage
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, fleeterrors.Wrap(fleeterrors.KindInternal, err, "decoding bitbucket repository page").WithProvider(a.name)
		}
		for _, v := range page.Values {
			if opts.RepoPattern != "" && !query.Matches(opts.RepoPattern, v.Name) {
				continue
			}
			cloneURL := ""
			for _, c := range v.Links.Clone {
				if c.Name == "https" {
					cloneURL = c.Href
				}
			}
			all = append(all, Repository{
				Organization:  workspace,
				Name:          v.Name,
				CloneURL:      cloneURL,
				DefaultBranch: v.Mainbranch.Name,
				IsPrivate:     v.IsPrivate,
				Description:   v.Description,
				ProviderName:  a.name,
				Metadata: map[string]interface{}{
					"workspace_uuid": v.Workspace.UUID,
					"full_name":      v.FullName,
				},
			})
		}
		url = page.Next
	}
	return all, nil
}

func (a *BitBucketAdapter) NormalizeCloneURL(url string, creds Credentials) string {
	if creds.User == "" || creds.Secret == "" {
		return url
	}
	return strings.Replace(url, "https://", fmt.Sprintf("https://%s:%s@", creds.User, creds.Secret), 1)
}

func (a *BitBucketAdapter) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fleeterrors.Wrap(fleeterrors.KindInternal, err, "building bitbucket request").WithProvider(a.name)
	}
	if a.user != "" {
		req.SetBasicAuth(a.user, a.appPass)
	}

	resp, err := a.http.Do(req)
	if err != nil {
		return nil, fleeterrors.Wrap(fleeterrors.KindNetwork, err, "bitbucket request failed").WithProvider(a.name)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fleeterrors.Wrap(fleeterrors.KindNetwork, err, "reading bitbucket response body").WithProvider(a.name)
	}

	if resp.StatusCode >= 300 {
		return nil, WrapHTTPError(a.name, url, resp.StatusCode, fmt.Errorf("status %s", resp.Status))
	}
	return body, nil
}
