package ckanta

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/ckanta/ckanta/ckan"
)

const (
	// DefaultPageSize is the number of records fetched per page of details.
	DefaultPageSize = 5

	// DefaultConcurrency bounds the number of concurrent show calls.
	DefaultConcurrency = 4
)

// Caller performs CKAN action calls. *ckan.Client implements it.
type Caller interface {
	Call(ctx context.Context, action string, payload map[string]any, method ckan.Method) (*ckan.Response, error)
}

// Service runs ckanta operations against a single CKAN instance.
type Service struct {
	api         Caller
	readMethod  ckan.Method
	states      *NationalStates
	pageSize    int
	concurrency int
	logger      *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithReadMethod sets the HTTP method used for list and show actions.
// Create actions are always sent as POST.
func WithReadMethod(m ckan.Method) Option {
	return func(s *Service) {
		if m != "" {
			s.readMethod = m
		}
	}
}

// WithNationalStates sets the states used to title datasets on upload.
func WithNationalStates(ns *NationalStates) Option {
	return func(s *Service) {
		s.states = ns
	}
}

// WithPageSize sets the default page size for Details and Dump.
func WithPageSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.pageSize = n
		}
	}
}

// WithConcurrency bounds concurrent show calls.
func WithConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a Service that calls api.
func New(api Caller, opts ...Option) (*Service, error) {
	if api == nil {
		return nil, ErrCallerRequired
	}

	s := &Service{
		api:         api,
		readMethod:  ckan.MethodGet,
		pageSize:    DefaultPageSize,
		concurrency: DefaultConcurrency,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// ListOptions configures a list operation.
type ListOptions struct {
	Object    Object
	AllFields bool
	Params    map[string]any // extra action parameters, override defaults
	Method    ckan.Method    // overrides the service read method
}

// ListResult holds the names or records returned by a list action.
type ListResult struct {
	Object  Object   `json:"object" yaml:"object"`
	Names   []string `json:"names,omitempty" yaml:"names,omitempty"`
	Records []Record `json:"records,omitempty" yaml:"records,omitempty"`
}

// Len returns the number of listed items.
func (r *ListResult) Len() int {
	return len(r.Names) + len(r.Records)
}

// listPayload returns the default parameters of <object>_list.
func listPayload(o Object, allFields bool) map[string]any {
	switch o {
	case Group, Organization:
		return map[string]any{"sort": "name asc", "all_fields": allFields}
	case User:
		return map[string]any{"all_fields": allFields}
	default:
		return map[string]any{}
	}
}

// List retrieves objects with the <object>_list action.
func (s *Service) List(ctx context.Context, opts ListOptions) (*ListResult, error) {
	if err := opts.Object.validate(); err != nil {
		return nil, err
	}

	action := opts.Object.Action("list")
	payload := listPayload(opts.Object, opts.AllFields)
	maps.Copy(payload, opts.Params)

	method := s.readMethod
	if opts.Method != "" {
		method = opts.Method
	}

	s.logger.DebugContext(ctx, "list", "action", action, "payload", payload)

	resp, err := s.api.Call(ctx, action, payload, method)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", action, err)
	}

	var items []any
	if err := resp.Decode(&items); err != nil {
		return nil, fmt.Errorf("%s: %w", action, err)
	}

	result := &ListResult{Object: opts.Object}
	for _, item := range items {
		switch v := item.(type) {
		case string:
			result.Names = append(result.Names, v)
		case map[string]any:
			result.Records = append(result.Records, Record(v))
		default:
			result.Names = append(result.Names, FormatCell(v))
		}
	}
	return result, nil
}

// listNames returns the sorted names of every object of kind o.
func (s *Service) listNames(ctx context.Context, o Object) ([]string, error) {
	result, err := s.List(ctx, ListOptions{Object: o})
	if err != nil {
		return nil, err
	}
	names := append([]string(nil), result.Names...)
	for _, rec := range result.Records {
		names = append(names, rec.Name())
	}
	sort.Strings(names)
	return names, nil
}

// ShowOptions configures a show operation.
type ShowOptions struct {
	Object Object
	ID     string
	Brief  bool
}

// briefDatasetFields are dropped from datasets shown in brief form.
var briefDatasetFields = []string{
	"resources", "num_resources", "num_tags", "revision_id", "license_url",
}

// Show retrieves a single object with the <object>_show action.
func (s *Service) Show(ctx context.Context, opts ShowOptions) (Record, error) {
	if err := opts.Object.validate(); err != nil {
		return nil, err
	}
	if opts.ID == "" {
		return nil, ErrMissingID
	}

	action := opts.Object.Action("show")
	payload := map[string]any{"id": opts.ID}
	if opts.Brief && opts.Object.IsGroupLike() {
		payload["include_users"] = false
		payload["include_groups"] = false
		payload["include_tags"] = false
		payload["include_followers"] = false
		payload["include_datasets"] = false
	}

	resp, err := s.api.Call(ctx, action, payload, s.readMethod)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", action, opts.ID, err)
	}

	var rec Record
	if err := resp.Decode(&rec); err != nil {
		return nil, fmt.Errorf("%s %s: %w", action, opts.ID, err)
	}

	if opts.Brief && opts.Object == Dataset {
		for _, field := range briefDatasetFields {
			delete(rec, field)
		}
	}
	return rec, nil
}

// showAll shows every named object, keeping the order of names. At most
// s.concurrency calls are in flight.
func (s *Service) showAll(ctx context.Context, o Object, names []string) ([]Record, error) {
	records := make([]Record, len(names))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, name := range names {
		i, name := i, name
		g.Go(func() error {
			rec, err := s.Show(gctx, ShowOptions{Object: o, ID: name, Brief: true})
			if err != nil {
				return err
			}
			records[i] = rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return records, nil
}

// DetailsOptions configures a paged details listing.
type DetailsOptions struct {
	Object   Object
	Page     int // 1-based, defaults to 1
	PageSize int // defaults to the service page size
	Offset   int
}

// Pager describes the window returned by Details.
type Pager struct {
	Page   int `json:"no" yaml:"no"`
	Size   int `json:"size" yaml:"size"`
	Offset int `json:"offset" yaml:"offset"`
	Total  int `json:"total" yaml:"total"`
}

// DetailsResult holds one page of full records.
type DetailsResult struct {
	Object  Object   `json:"object" yaml:"object"`
	Records []Record `json:"data" yaml:"data"`
	Pager   Pager    `json:"pager" yaml:"pager"`
}

// Details lists the names of groups or organizations, sorts them, and shows
// the page selected by opts.
func (s *Service) Details(ctx context.Context, opts DetailsOptions) (*DetailsResult, error) {
	if err := opts.Object.validate(); err != nil {
		return nil, err
	}
	if !opts.Object.IsGroupLike() {
		return nil, fmt.Errorf("%w: details for %s", ErrUnsupported, opts.Object)
	}

	page := opts.Page
	if page <= 0 {
		page = 1
	}
	size := opts.PageSize
	if size <= 0 {
		size = s.pageSize
	}
	offset := max(opts.Offset, 0)

	names, err := s.listNames(ctx, opts.Object)
	if err != nil {
		return nil, err
	}

	window := pageWindow(names, offset+(page*size)-size, size)
	records, err := s.showAll(ctx, opts.Object, window)
	if err != nil {
		return nil, err
	}

	return &DetailsResult{
		Object:  opts.Object,
		Records: records,
		Pager:   Pager{Page: page, Size: size, Offset: offset, Total: len(names)},
	}, nil
}

// pageWindow returns names[start:start+size] clamped to the slice bounds.
func pageWindow(names []string, start, size int) []string {
	if start < 0 {
		start = 0
	}
	if start >= len(names) || size <= 0 {
		return nil
	}
	end := min(start+size, len(names))
	return names[start:end]
}

// MembershipOptions configures a membership lookup.
type MembershipOptions struct {
	UserID string
	Groups bool // also list groups the user can edit
}

// Membership lists the records a user belongs to for one action.
type Membership struct {
	Object  Object   `json:"object" yaml:"object"`
	Action  string   `json:"action" yaml:"action"`
	Records []Record `json:"records" yaml:"records"`
}

// Membership lists the organizations, and optionally groups, of a user.
func (s *Service) Membership(ctx context.Context, opts MembershipOptions) ([]Membership, error) {
	if opts.UserID == "" {
		return nil, ErrMissingID
	}

	targets := []Membership{{Object: Organization, Action: "organization_list_for_user"}}
	if opts.Groups {
		targets = append(targets, Membership{Object: Group, Action: "group_list_authz"})
	}

	payload := map[string]any{"id": opts.UserID}
	s.logger.DebugContext(ctx, "membership", "user", opts.UserID, "groups", opts.Groups)

	for i := range targets {
		resp, err := s.api.Call(ctx, targets[i].Action, payload, s.readMethod)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", targets[i].Action, err)
		}
		var records []Record
		if err := resp.Decode(&records); err != nil {
			return nil, fmt.Errorf("%s: %w", targets[i].Action, err)
		}
		targets[i].Records = records
	}
	return targets, nil
}
