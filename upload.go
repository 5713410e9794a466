package ckanta

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/gosimple/slug"

	"github.com/ckanta/ckanta/ckan"
)

// jsonColumns hold JSON documents in dataset fixtures.
var jsonColumns = []string{
	"groups", "tags", "extras", "relationships_as_object", "relationships_as_subject",
}

// excludedGroupColumns are server-managed group and organization fields that
// fixtures exported from another instance may carry.
var excludedGroupColumns = []string{
	"image_display_url", "package_count", "created", "image_url",
	"revision_id", "num_followers", "extras",
}

// organizationExtras are stored as organization extras instead of top-level fields.
var organizationExtras = []string{"code", "slogan", "website_url"}

// UploadOptions configures an upload.
type UploadOptions struct {
	Object    Object
	Input     io.Reader
	OwnerOrgs []string // datasets only; each row is created once per org
}

// UploadItem is the outcome of a single create call.
type UploadItem struct {
	Name     string `json:"name" yaml:"name"`
	OwnerOrg string `json:"owner_org,omitempty" yaml:"owner_org,omitempty"`
	OK       bool   `json:"ok" yaml:"ok"`
	Error    string `json:"error,omitempty" yaml:"error,omitempty"`
}

// UploadSummary counts upload outcomes.
type UploadSummary struct {
	Total  int `json:"total" yaml:"total"`
	Passed int `json:"passed" yaml:"passed"`
	Failed int `json:"failed" yaml:"failed"`
}

// UploadReport is the result of an upload run.
type UploadReport struct {
	RunID   uuid.UUID     `json:"run_id" yaml:"run_id"`
	Object  Object        `json:"object" yaml:"object"`
	Action  string        `json:"action" yaml:"action"`
	Items   []UploadItem  `json:"items" yaml:"items"`
	Summary UploadSummary `json:"summary" yaml:"summary"`
}

// Lines returns one "+ name" or "x name" line per item.
func (r *UploadReport) Lines() []string {
	lines := make([]string, len(r.Items))
	for i, item := range r.Items {
		mark := "x"
		if item.OK {
			mark = "+"
		}
		lines[i] = mark + " " + item.Name
	}
	return lines
}

func (r *UploadReport) add(item UploadItem) {
	r.Items = append(r.Items, item)
	r.Summary.Total++
	if item.OK {
		r.Summary.Passed++
	} else {
		r.Summary.Failed++
	}
}

// uploadJob is one payload to send, or the error that prevented building it.
type uploadJob struct {
	payload  map[string]any
	ownerOrg string
	err      error
}

// Upload creates one record per CSV row, or per row and owner organization
// for datasets. Failed items are recorded in the report and do not stop the
// run; the returned error covers only unreadable input and context
// cancellation.
func (s *Service) Upload(ctx context.Context, opts UploadOptions) (*UploadReport, error) {
	if err := opts.Object.validate(); err != nil {
		return nil, err
	}
	if len(opts.OwnerOrgs) > 0 && opts.Object != Dataset {
		return nil, fmt.Errorf("%w: owner organizations apply to datasets only, not %s", ErrUnsupported, opts.Object)
	}
	if opts.Input == nil {
		return nil, ErrMissingInput
	}

	rows, err := readRows(opts.Input)
	if err != nil {
		return nil, err
	}

	report := &UploadReport{
		RunID:  uuid.New(),
		Object: opts.Object,
		Action: opts.Object.Action("create"),
		Items:  []UploadItem{},
	}
	logger := s.logger.With("run_id", report.RunID.String(), "action", report.Action)
	logger.InfoContext(ctx, "upload started", "rows", len(rows), "owner_orgs", len(opts.OwnerOrgs))

	for _, job := range s.uploadJobs(opts, rows) {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		item := UploadItem{Name: payloadName(job.payload), OwnerOrg: job.ownerOrg}
		err := job.err
		if err == nil {
			logger.DebugContext(ctx, "upload payload", "payload", job.payload)
			_, err = s.api.Call(ctx, report.Action, job.payload, ckan.MethodPost)
		}

		if err != nil {
			if errors.Is(err, context.Canceled) {
				return report, err
			}
			item.Error = err.Error()
			logger.ErrorContext(ctx, "create failed", "name", item.Name, "owner_org", item.OwnerOrg, "error", err)
		} else {
			item.OK = true
			logger.InfoContext(ctx, "created", "name", item.Name, "owner_org", item.OwnerOrg)
		}
		report.add(item)
	}

	logger.InfoContext(ctx, "upload finished",
		"total", report.Summary.Total,
		"passed", report.Summary.Passed,
		"failed", report.Summary.Failed,
	)
	return report, nil
}

func (s *Service) uploadJobs(opts UploadOptions, rows []map[string]string) []uploadJob {
	var jobs []uploadJob
	for _, row := range rows {
		switch opts.Object {
		case Dataset:
			if len(opts.OwnerOrgs) == 0 {
				payload, err := datasetPayload(row)
				jobs = append(jobs, uploadJob{payload: payload, err: err})
				continue
			}
			for _, org := range opts.OwnerOrgs {
				payload, err := s.datasetPayloadFor(row, org)
				jobs = append(jobs, uploadJob{payload: payload, ownerOrg: org, err: err})
			}
		case Organization, Group:
			jobs = append(jobs, uploadJob{payload: groupPayload(opts.Object, row)})
		case User:
			jobs = append(jobs, uploadJob{payload: rowPayload(row)})
		}
	}
	return jobs
}

// datasetPayloadFor builds a dataset payload owned by org. Unless org carries
// NationalPrefix the title is prefixed with the org's state name.
func (s *Service) datasetPayloadFor(row map[string]string, org string) (map[string]any, error) {
	local := make(map[string]string, len(row)+2)
	for k, v := range row {
		local[k] = v
	}

	norm := strings.TrimPrefix(org, NationalPrefix)
	setDefault(local, "owner_org", norm)
	setDefault(local, "locations", norm)

	if !strings.HasPrefix(org, NationalPrefix) {
		state, ok := s.states.Lookup(org)
		if !ok {
			payload, _ := datasetPayload(local)
			return payload, fmt.Errorf("%w: %s", ErrUnknownState, org)
		}
		local["title"] = strings.TrimSpace(state.Name + " " + local["title"])
	}

	return datasetPayload(local)
}

// datasetPayload applies dataset defaults and decodes JSON columns.
func datasetPayload(row map[string]string) (map[string]any, error) {
	local := make(map[string]string, len(row)+4)
	for k, v := range row {
		local[k] = v
	}
	setDefault(local, "type", "dataset")
	setDefault(local, "state", "active")
	setDefault(local, "private", "false")
	setDefault(local, "name", slug.Make(local["title"]))

	payload := rowPayload(local)
	for _, col := range jsonColumns {
		raw, ok := payload[col].(string)
		if !ok {
			continue
		}
		var v any
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			return payload, fmt.Errorf("column %s: invalid JSON: %w", col, err)
		}
		payload[col] = v
	}

	if sector := strings.TrimSpace(local["sector_id"]); sector != "" {
		payload["groups"] = []map[string]any{{"name": sector}}
	}
	return payload, nil
}

// groupPayload drops server-managed columns. Organizations get their extra
// columns moved into extras.
func groupPayload(o Object, row map[string]string) map[string]any {
	payload := rowPayload(row)
	for _, col := range excludedGroupColumns {
		delete(payload, col)
	}
	if o != Organization {
		return payload
	}

	var extras []map[string]any
	for _, field := range organizationExtras {
		v, ok := payload[field]
		if !ok {
			continue
		}
		extras = append(extras, map[string]any{"key": field, "value": v})
		delete(payload, field)
	}
	if len(extras) > 0 {
		payload["extras"] = extras
	}
	return payload
}

// rowPayload converts a CSV row into a payload, skipping empty cells.
func rowPayload(row map[string]string) map[string]any {
	payload := make(map[string]any, len(row))
	for k, v := range row {
		if v == "" {
			continue
		}
		payload[k] = v
	}
	return payload
}

func payloadName(payload map[string]any) string {
	return Record(payload).Name()
}

func setDefault(row map[string]string, key, value string) {
	if row[key] == "" {
		row[key] = value
	}
}

// readRows reads a CSV document with a header row into maps keyed by header.
func readRows(r io.Reader) ([]map[string]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyInput
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var rows []map[string]string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		row := make(map[string]string, len(header))
		for i, col := range header {
			if col == "" || i >= len(record) {
				continue
			}
			row[col] = record[i]
		}
		rows = append(rows, row)
	}
	return rows, nil
}
