// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package provider

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	fleeterrors "github.com/gzh-fleet/gitfleet/pkg/errors"
	"github.com/gzh-fleet/gitfleet/pkg/query"
)

const adoAPIVersion = "7.1"

// AzureDevOpsAdapter implements Provider against the Azure DevOps REST API.
// Hierarchy is organization -> project -> repository; the middle segment is
// significant here, unlike GitHub/BitBucket, since ADO's project concept
// genuinely exists and the API is project-scoped for repository listing.
// Authentication is PAT-only: the configured "user" field is ignored.
type AzureDevOpsAdapter struct {
	name    string
	baseURL string // e.g. https://dev.azure.com/<org>
	token   string
	http    *http.Client
}

// NewAzureDevOpsAdapter builds an ADO adapter. baseURL is expected to
// already be organization-scoped (https://dev.azure.com/<org>), matching
// ADO's organization-scoped API endpoints.
func NewAzureDevOpsAdapter(name, baseURL, token string) *AzureDevOpsAdapter {
	return &AzureDevOpsAdapter{
		name:    name,
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: DefaultRequestTimeout},
	}
}

func (a *AzureDevOpsAdapter) Name() string { return a.name }

func (a *AzureDevOpsAdapter) Authenticate(ctx context.Context) error {
	_, err := a.get(ctx, fmt.Sprintf("%s/_apis/projects?api-version=%s", a.baseURL, adoAPIVersion))
	if err != nil {
		return fleeterrors.Wrap(fleeterrors.KindAuth, err, "azure devops authentication failed").WithProvider(a.name)
	}
	return nil
}

// ListOrganizations is not supported: an ADO adapter instance is already
// scoped to a single organization by its base URL.
func (a *AzureDevOpsAdapter) ListOrganizations(ctx context.Context) ([]string, error) {
	return nil, fleeterrors.New(fleeterrors.KindValidation, "azure devops adapter is organization-scoped; list_organizations is not supported").WithProvider(a.name)
}

type adoProjectList struct {
	Value []struct {
		Name string `json:"name"`
	} `json:"value"`
}

func (a *AzureDevOpsAdapter) ListProjects(ctx context.Context, organization string) ([]string, error) {
	body, err := a.get(ctx, fmt.Sprintf("%s/_apis/projects?api-version=%s", a.baseURL, adoAPIVersion))
	if err != nil {
		return nil, err
	}
	var list adoProjectList
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fleeterrors.Wrap(fleeterrors.KindInternal, err, "decoding azure devops project list").WithProvider(a.name)
	}
	names := make([]string, 0, len(list.Value))
	for _, p := range list.Value {
		names = append(names, p.Name)
	}
	return names, nil
}

type adoRepoList struct {
	Value []struct {
		Name    string `json:"name"`
		WebURL  string `json:"webUrl"`
		RemoteURL string `json:"remoteUrl"`
		DefaultBranch string `json:"defaultBranch"`
		IsDisabled bool `json:"isDisabled"`
		Project struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"project"`
	} `json:"value"`
}

// ListRepositories respects the middle segment: it is resolved against the
// project list and server-side scopes the repository listing call, then
// client-side glob-filters the repo name.
func (a *AzureDevOpsAdapter) ListRepositories(ctx context.Context, opts ListOptions) ([]Repository, error) {
	projects, err := a.ListProjects(ctx, opts.OrgPattern)
	if err != nil {
		return nil, err
	}

	var matchedProjects []string
	for _, p := range projects {
		if opts.MiddlePattern == "" || query.Matches(opts.MiddlePattern, p) {
			matchedProjects = append(matchedProjects, p)
		}
	}

	var all []Repository
	for _, project := range matchedProjects {
		repos, err := a.listRepositoriesInProject(ctx, project)
		if err != nil {
			return nil, err
		}
		for _, r := range repos {
			if opts.RepoPattern != "" && !query.Matches(opts.RepoPattern, r.Name) {
				continue
			}
			all = append(all, r)
		}
	}
	return all, nil
}

func (a *AzureDevOpsAdapter) listRepositoriesInProject(ctx context.Context, project string) ([]Repository, error) {
	url := fmt.Sprintf("%s/%s/_apis/git/repositories?api-version=%s", a.baseURL, escapePath(project), adoAPIVersion)
	body, err := a.get(ctx, url)
	if err != nil {
		return nil, err
	}
	var list adoRepoList
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fleeterrors.Wrap(fleeterrors.KindInternal, err, "decoding azure devops repository list").WithProvider(a.name)
	}

	orgName := organizationFromBaseURL(a.baseURL)
	out := make([]Repository, 0, len(list.Value))
	for _, r := range list.Value {
		out = append(out, Repository{
			Organization:  orgName,
			Project:       r.Project.Name,
			Name:          r.Name,
			CloneURL:      r.RemoteURL,
			DefaultBranch: strings.TrimPrefix(r.DefaultBranch, "refs/heads/"),
			ProviderName:  a.name,
			Metadata: map[string]interface{}{
				"project_id":  r.Project.ID,
				"is_disabled": r.IsDisabled,
				"web_url":     r.WebURL,
			},
		})
	}
	return out, nil
}

// NormalizeCloneURL leaves the URL bare: Azure DevOps credentials are passed
// to Git via an http.extraheader basic-auth header rather than embedded in
// the URL (§4.G). ExtraHeaderFor returns that header's value.
func (a *AzureDevOpsAdapter) NormalizeCloneURL(url string, creds Credentials) string {
	return url
}

// ExtraHeaderFor returns the "Authorization: Basic ..." value the Git
// executor should pass via `-c http.extraheader=` for this adapter's clones.
func (a *AzureDevOpsAdapter) ExtraHeaderFor() string {
	encoded := base64.StdEncoding.EncodeToString([]byte("pat:" + a.token))
	return "Authorization: Basic " + encoded
}

func (a *AzureDevOpsAdapter) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fleeterrors.Wrap(fleeterrors.KindInternal, err, "building azure devops request").WithProvider(a.name)
	}
	req.SetBasicAuth("", a.token)

	resp, err := a.http.Do(req)
	if err != nil {
		return nil, fleeterrors.Wrap(fleeterrors.KindNetwork, err, "azure devops request failed").WithProvider(a.name)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fleeterrors.Wrap(fleeterrors.KindNetwork, err, "reading azure devops response body").WithProvider(a.name)
	}

	if resp.StatusCode >= 300 {
		return nil, WrapHTTPError(a.name, url, resp.StatusCode, fmt.Errorf("status %s", resp.Status))
	}
	return body, nil
}

func escapePath(s string) string {
	return strings.ReplaceAll(s, " ", "%20")
}

func organizationFromBaseURL(baseURL string) string {
	parts := strings.Split(strings.TrimRight(baseURL, "/"), "/")
	if len(parts) == 0 {
		return baseURL
	}
	return parts[len(parts)-1]
}
