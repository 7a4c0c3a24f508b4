package services

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"html/template"
	"sync"
	"time"

	"github.com/anjiri1684/drive_tutor/models"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

//go:embed templates/certificate.html
var certificateHTML string

var certificateTemplate = template.Must(template.New("certificate").Parse(certificateHTML))

type PDFRenderer interface {
	RenderPDF(ctx context.Context, html string) ([]byte, error)
}

type FileUploader interface {
	Upload(ctx context.Context, data []byte, publicID string) (string, error)
}

// CertificateService issues a PDF certificate when a package completes.
// It subscribes to package events and works in the background.
type CertificateService struct {
	store    Store
	renderer PDFRenderer
	uploader FileUploader
	log      *zap.Logger
	now      func() time.Time
	wg       sync.WaitGroup
}

func NewCertificateService(store Store, renderer PDFRenderer, uploader FileUploader, log *zap.Logger) *CertificateService {
	if log == nil {
		log = zap.NewNop()
	}
	return &CertificateService{store: store, renderer: renderer, uploader: uploader, log: log, now: time.Now}
}

// WithClock allows tests to override the clock used by the service.
func (s *CertificateService) WithClock(fn func() time.Time) {
	s.now = fn
}

func (s *CertificateService) Publish(_ context.Context, e Event) {
	if e.Kind != EventPackageCompleted {
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if _, err := s.Issue(ctx, e.PackageID); err != nil {
			s.log.Error("certificate not issued", zap.String("package_id", e.PackageID.String()), zap.Error(err))
		}
	}()
}

// Wait blocks until background issuing has finished.
func (s *CertificateService) Wait() {
	s.wg.Wait()
}

// Issue renders, uploads and records the certificate of a completed package.
// An existing certificate is returned as is.
func (s *CertificateService) Issue(ctx context.Context, packageID uuid.UUID) (*models.Certificate, error) {
	if existing, err := s.store.GetCertificateByPackage(ctx, packageID); err == nil {
		return existing, nil
	} else if !errors.Is(err, ErrNotFound) {
		return nil, storeErr(err)
	}

	pkg, err := s.store.GetPackage(ctx, packageID)
	if err != nil {
		return nil, storeErr(err)
	}
	if pkg.Status != models.PackageCompleted {
		return nil, fmt.Errorf("%w: package is %s", ErrInvalidTransition, pkg.Status)
	}
	student, err := s.store.GetUser(ctx, pkg.StudentID)
	if err != nil {
		return nil, storeErr(err)
	}
	instructor, err := s.store.GetUser(ctx, pkg.InstructorID)
	if err != nil {
		return nil, storeErr(err)
	}

	completed := s.now()
	if pkg.CompletedAt != nil {
		completed = *pkg.CompletedAt
	}
	cert := &models.Certificate{
		ID:             uuid.New(),
		PackageID:      pkg.ID,
		StudentID:      pkg.StudentID,
		InstructorID:   pkg.InstructorID,
		Hours:          pkg.TotalHours,
		CompletionDate: completed,
	}

	var html bytes.Buffer
	err = certificateTemplate.Execute(&html, map[string]interface{}{
		"StudentName":    student.FullName,
		"InstructorName": instructor.FullName,
		"Hours":          pkg.TotalHours,
		"CompletionDate": completed.Format("January 2, 2006"),
		"Reference":      cert.ID.String(),
	})
	if err != nil {
		return nil, fmt.Errorf("render certificate html: %w", err)
	}

	pdf, err := s.renderer.RenderPDF(ctx, html.String())
	if err != nil {
		return nil, fmt.Errorf("render certificate pdf: %w", err)
	}
	url, err := s.uploader.Upload(ctx, pdf, fmt.Sprintf("certificates/%s_%s", pkg.StudentID, cert.ID))
	if err != nil {
		return nil, fmt.Errorf("upload certificate: %w", err)
	}
	cert.CertificateURL = url

	if err := s.store.CreateCertificate(ctx, cert); err != nil {
		return nil, storeErr(err)
	}
	s.log.Info("certificate issued", zap.String("package_id", pkg.ID.String()), zap.String("url", url))
	return cert, nil
}

func (s *CertificateService) ListForStudent(ctx context.Context, actor Actor) ([]models.Certificate, error) {
	if actor.Role != models.RoleStudent {
		return nil, fmt.Errorf("%w: only students hold certificates", ErrUnauthorizedActor)
	}
	certs, err := s.store.ListCertificatesByStudent(ctx, actor.ID)
	return certs, storeErr(err)
}

// ChromeRenderer prints HTML to PDF with headless Chrome.
type ChromeRenderer struct{}

func (ChromeRenderer) RenderPDF(ctx context.Context, htmlContent string) ([]byte, error) {
	ctx, cancel := chromedp.NewContext(ctx)
	defer cancel()

	var pdfBuffer []byte
	err := chromedp.Run(ctx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, htmlContent).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			pdf, _, err := page.PrintToPDF().WithPrintBackground(true).WithLandscape(true).Do(ctx)
			if err != nil {
				return err
			}
			pdfBuffer = pdf
			return nil
		}),
	)
	if err != nil {
		return nil, err
	}
	return pdfBuffer, nil
}
