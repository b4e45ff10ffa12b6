package leads

import (
	"context"

	"golang.org/x/sync/errgroup"

	"counsellor-console/errors"
	"counsellor-console/logger"
	"counsellor-console/models"
	"counsellor-console/utils"
)

// Client is the part of the CRM API that takes new leads.
type Client interface {
	AddDirectStudent(ctx context.Context, req models.DirectStudentRequest) (models.ID, error)
	FilterOptions(ctx context.Context) (models.FilterOptions, error)
}

// Service validates leads and submits them to the CRM one at a time.
type Service struct {
	client      Client
	concurrency int
}

func NewService(client Client, concurrency int) *Service {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Service{client: client, concurrency: concurrency}
}

// Add validates one lead and creates it.
func (s *Service) Add(ctx context.Context, lead models.Lead) (models.ID, error) {
	utils.NormalizeLead(&lead)
	if err := utils.ValidateLead(&lead); err != nil {
		return "", errors.E(errors.ValidationFailed, err.Error())
	}
	id, err := s.client.AddDirectStudent(ctx, utils.BuildDirectStudentRequest(lead))
	if err != nil {
		return "", err
	}
	logger.Info("✅ Lead created: %s (student %s)", lead.Email, id)
	return id, nil
}

// SourceOptions lists the sources an "other" lead may pick from.
func (s *Service) SourceOptions(ctx context.Context) ([]string, error) {
	opts, err := s.client.FilterOptions(ctx)
	if err != nil {
		return nil, err
	}
	if opts.Source == nil {
		return []string{}, nil
	}
	return opts.Source, nil
}

// RowError reports why one spreadsheet row was not imported. Row is 1-based as shown in Excel.
type RowError struct {
	Row   int    `json:"row"`
	Email string `json:"email,omitempty"`
	Error string `json:"error"`
}

// ImportResult summarises a bulk import.
type ImportResult struct {
	Total      int         `json:"total"`
	Success    int         `json:"success"`
	Failed     int         `json:"failed"`
	Duplicates int         `json:"duplicates"`
	StudentIDs []models.ID `json:"student_ids"`
	Errors     []RowError  `json:"errors"`
}

// Import submits parsed rows. Rows duplicated by email and phone are skipped,
// a failing row never stops the others.
func (s *Service) Import(ctx context.Context, rows []Row) *ImportResult {
	res := &ImportResult{Total: len(rows), StudentIDs: []models.ID{}, Errors: []RowError{}}

	leads := make([]models.Lead, len(rows))
	for i := range rows {
		leads[i] = rows[i].Lead
		utils.NormalizeLead(&leads[i])
	}
	unique := utils.DeduplicateLeads(leads)
	res.Duplicates = len(leads) - len(unique)

	// map deduplicated leads back to their first row
	first := make(map[string]int, len(rows))
	for i, l := range leads {
		key := l.Email + "|" + l.Phone
		if _, ok := first[key]; !ok {
			first[key] = i
		}
	}

	ids := make([]models.ID, len(unique))
	errs := make([]error, len(unique))
	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i := range unique {
		g.Go(func() error {
			ids[i], errs[i] = s.Add(ctx, unique[i])
			return nil
		})
	}
	_ = g.Wait()

	for i, l := range unique {
		if errs[i] != nil {
			res.Failed++
			res.Errors = append(res.Errors, RowError{
				Row:   rows[first[l.Email+"|"+l.Phone]].Number,
				Email: l.Email,
				Error: errs[i].Error(),
			})
		} else {
			res.Success++
			res.StudentIDs = append(res.StudentIDs, ids[i])
		}
	}
	logger.Info("Lead import finished: %d total, %d created, %d failed, %d duplicates",
		res.Total, res.Success, res.Failed, res.Duplicates)
	return res
}
