package extract

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vasudevanstar/MediCloak---AI-Privacy-Protector/internal/domain"
	"github.com/vasudevanstar/MediCloak---AI-Privacy-Protector/internal/observability"
	"github.com/vasudevanstar/MediCloak---AI-Privacy-Protector/internal/pdf"
)

// Service orchestrates text extraction. It keeps no per-run state, so one
// Service may serve concurrent runs on different documents.
type Service struct {
	rasterizer domain.Rasterizer
	recognizer domain.RecognizerFactory
	scale      float64
	logger     *observability.Logger
}

// Option configures a Service
type Option func(*Service)

// WithScale overrides the page render magnification
func WithScale(scale float64) Option {
	return func(s *Service) {
		if scale > 0 {
			s.scale = scale
		}
	}
}

// WithLogger sets the service logger
func WithLogger(logger *observability.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService creates a new extraction service
func NewService(rasterizer domain.Rasterizer, recognizer domain.RecognizerFactory, opts ...Option) *Service {
	s := &Service{
		rasterizer: rasterizer,
		recognizer: recognizer,
		scale:      pdf.DefaultScale,
		logger:     observability.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.WithOperation("extract")
	return s
}

// Extract returns the text of doc. Progress is reported to onProgress, which
// may be nil. Every failure is a *domain.ExtractionError and no partial text
// is ever returned.
func (s *Service) Extract(ctx context.Context, doc domain.Document, onProgress domain.ProgressFunc) (string, error) {
	startTime := time.Now()
	logger := s.logger.With().
		Str("run_id", uuid.NewString()).
		Str("kind", doc.Kind.String()).
		Str("document", doc.Name).
		Logger()

	sink := newProgressSink(onProgress)
	defer sink.close()

	var (
		text string
		err  error
	)
	switch doc.Kind {
	case domain.KindPlainText:
		text, err = s.extractPlainText(doc)
	case domain.KindImage:
		text, err = s.extractImage(ctx, doc, sink)
	case domain.KindPagedDocument:
		text, err = s.extractPaged(ctx, doc, sink, logger)
	default:
		err = domain.UnsupportedKindError(doc.Kind)
	}

	if err != nil {
		sink.close()
		logger.Error().Err(err).Dur("elapsed", time.Since(startTime)).Msg("Extraction failed")
		return "", err
	}

	sink.complete()
	logger.Info().
		Int("chars", len(text)).
		Dur("elapsed", time.Since(startTime)).
		Msg("Extraction complete")
	return text, nil
}

func (s *Service) extractPlainText(doc domain.Document) (string, error) {
	text, err := decodeText(doc.Data)
	if err != nil {
		return "", domain.ValidationError("Failed to read the text file", err)
	}
	return text, nil
}

func (s *Service) extractImage(ctx context.Context, doc domain.Document, sink *progressSink) (text string, err error) {
	sink.emit(domain.ProgressEvent{Status: domain.StatusInitializing, Fraction: 0})

	rec, err := s.recognizer.NewRecognizer(ctx)
	if err != nil {
		return "", domain.EngineInitError(err)
	}
	defer s.release(rec)

	sink.emit(ImageProgress(0))
	text, err = rec.RecognizeBytes(ctx, doc.Data, func(p float64) {
		sink.emit(ImageProgress(p))
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", domain.CancelledError(ctxErr)
		}
		return "", domain.ImageError(err)
	}
	return text, nil
}

func (s *Service) extractPaged(ctx context.Context, doc domain.Document, sink *progressSink, logger *observability.Logger) (string, error) {
	paged, err := s.rasterizer.Open(ctx, doc.Data)
	if err != nil {
		return "", domain.DecodeError(err)
	}
	defer func() {
		if cerr := paged.Close(); cerr != nil {
			logger.Warn().Err(cerr).Msg("Failed to close document")
		}
	}()

	numPages := paged.NumPages()
	if numPages < 1 {
		return "", domain.DecodeError(domain.ErrNoPages)
	}
	logger.Info().Int("pages", numPages).Msg("Opened paged document")

	sink.emit(domain.ProgressEvent{Status: domain.StatusInitializing, Fraction: 0})
	rec, err := s.recognizer.NewRecognizer(ctx)
	if err != nil {
		return "", domain.EngineInitError(err)
	}
	defer s.release(rec)

	texts := make([]string, 0, numPages)
	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return "", domain.CancelledError(err)
		}

		sink.emit(PageProgress(i, numPages, 0, preparingLabel(i, numPages)))

		pageText, err := s.extractPage(ctx, paged, rec, i, numPages, sink)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return "", domain.CancelledError(ctxErr)
			}
			logger.Error().Int("page", i).Err(err).Msg("Failed to process page")
			return "", domain.PageError(i, err)
		}

		logger.Debug().Int("page", i).Int("chars", len(pageText)).Msg("Page complete")
		texts = append(texts, pageText)
	}

	return strings.Join(texts, domain.PageSeparator), nil
}

// extractPage renders and recognizes a single page. The bitmap does not
// outlive this call.
func (s *Service) extractPage(ctx context.Context, paged domain.PagedDocument, rec domain.Recognizer, i, n int, sink *progressSink) (string, error) {
	bitmap, err := paged.RenderPage(ctx, i, s.scale)
	if err != nil {
		return "", err
	}
	if bitmap == nil {
		return "", errors.New("renderer returned no bitmap")
	}
	page := domain.Page{Index: i, Bitmap: bitmap}

	label := recognizingLabel(i, n)
	return rec.RecognizeImage(ctx, page.Bitmap, func(p float64) {
		sink.emit(PageProgress(page.Index, n, p, label))
	})
}

// release terminates the engine on every exit path
func (s *Service) release(rec domain.Recognizer) {
	if err := rec.Close(); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to terminate OCR engine")
	}
}
