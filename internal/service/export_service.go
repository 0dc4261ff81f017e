package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/nikolasrailan/tcc-match-sub000/internal/models"
	appErrors "github.com/nikolasrailan/tcc-match-sub000/pkg/errors"
	"github.com/nikolasrailan/tcc-match-sub000/pkg/export"
)

type userReader interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// ExportService renders defense records and committee listings into
// downloadable documents.
type ExportService struct {
	committees  committeeRepository
	advisings   advisingRepository
	ideas       ideaRepository
	professors  advisorResolver
	users       userReader
	pdf         *export.PDFExporter
	csv         *export.CSVExporter
	institution string
	logger      *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(committees committeeRepository, advisings advisingRepository, ideas ideaRepository, professors advisorResolver, users userReader, institution string, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		committees:  committees,
		advisings:   advisings,
		ideas:       ideas,
		professors:  professors,
		users:       users,
		pdf:         export.NewPDFExporter(),
		csv:         export.NewCSVExporter(),
		institution: institution,
		logger:      logger,
	}
}

// DefenseRecordPDF renders the defense record document for a committee:
// thesis, parties, evaluators and the recorded verdict and grade.
func (s *ExportService) DefenseRecordPDF(ctx context.Context, committeeID string) ([]byte, string, error) {
	committee, err := s.committees.FindByID(ctx, committeeID)
	if err != nil {
		return nil, "", appErrors.Clone(appErrors.ErrNotFound, "committee not found")
	}

	advising, err := s.advisings.FindByID(ctx, committee.AdvisingID)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load advising")
	}
	idea, err := s.ideas.FindByID(ctx, advising.IdeaID)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load idea")
	}
	student, err := s.users.FindByID(ctx, advising.StudentID)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	advisor, err := s.professors.FindByID(ctx, advising.ProfessorID)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load advisor")
	}

	evaluatorNames := make([]string, 0, 3)
	for _, evaluatorID := range committee.EvaluatorIDs() {
		evaluator, err := s.professors.FindByID(ctx, evaluatorID)
		if err != nil {
			s.logger.Warn("evaluator lookup failed for defense record", zap.String("professor_id", evaluatorID), zap.Error(err))
			continue
		}
		evaluatorNames = append(evaluatorNames, evaluator.FullName)
	}

	fields := []export.RecordField{
		{Label: "Thesis", Value: idea.Title},
		{Label: "Student", Value: student.FullName},
		{Label: "Advisor", Value: advisor.FullName},
	}
	for i, name := range evaluatorNames {
		fields = append(fields, export.RecordField{Label: fmt.Sprintf("Evaluator %d", i+1), Value: name})
	}
	if committee.DefenseDate != nil {
		fields = append(fields, export.RecordField{Label: "Defense date", Value: committee.DefenseDate.Format("2006-01-02 15:04")})
	}
	if committee.Location != nil {
		fields = append(fields, export.RecordField{Label: "Location", Value: *committee.Location})
	}
	if committee.Verdict != nil {
		fields = append(fields, export.RecordField{Label: "Verdict", Value: string(*committee.Verdict)})
	}
	if committee.Grade != nil {
		fields = append(fields, export.RecordField{Label: "Grade", Value: string(*committee.Grade)})
	}

	signatures := append([]string{advisor.FullName}, evaluatorNames...)
	payload, err := s.pdf.RenderRecord(export.Record{
		Institution: s.institution,
		Title:       "Thesis Defense Record",
		Fields:      fields,
		Signatures:  signatures,
	})
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render defense record")
	}

	filename := fmt.Sprintf("defense-record-%s.pdf", committee.ID)
	return payload, filename, nil
}

// CommitteesCSV renders the full committee roster as CSV.
func (s *ExportService) CommitteesCSV(ctx context.Context) ([]byte, string, error) {
	committees, err := s.committees.List(ctx)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list committees")
	}

	dataset := export.Dataset{
		Headers: []string{"committee_id", "advising_id", "seats_filled", "defense_date", "location", "verdict", "grade"},
	}
	for _, committee := range committees {
		row := map[string]string{
			"committee_id": committee.ID,
			"advising_id":  committee.AdvisingID,
			"seats_filled": fmt.Sprintf("%d", len(committee.EvaluatorIDs())),
		}
		if committee.DefenseDate != nil {
			row["defense_date"] = committee.DefenseDate.Format(time.RFC3339)
		}
		if committee.Location != nil {
			row["location"] = *committee.Location
		}
		if committee.Verdict != nil {
			row["verdict"] = string(*committee.Verdict)
		}
		if committee.Grade != nil {
			row["grade"] = string(*committee.Grade)
		}
		dataset.Rows = append(dataset.Rows, row)
	}

	payload, err := s.csv.Render(dataset)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render committees export")
	}
	return payload, "committees.csv", nil
}
