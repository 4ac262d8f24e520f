package server

import (
	"errors"
	"html/template"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/cozy-creator/greenlens/internal/app"
	"github.com/cozy-creator/greenlens/internal/classifier"
	"github.com/cozy-creator/greenlens/internal/metrics"
	"github.com/cozy-creator/greenlens/internal/model"
	"github.com/cozy-creator/greenlens/internal/presenter"
	"github.com/cozy-creator/greenlens/internal/taxonomy"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// MaxClaimLength caps a submitted claim, in characters.
const MaxClaimLength = 5000

var (
	ErrEmptyClaim   = errors.New("please enter a claim to analyze")
	ErrClaimTooLong = errors.New("claim is too long")
)

var templateFuncs = template.FuncMap{
	"duration": func(d time.Duration) string {
		return d.Round(time.Millisecond).String()
	},
}

type pageData struct {
	Categories []taxonomy.Category
	Examples   []taxonomy.Example
	Model      model.Info
	MaxLength  int

	Claim   string
	Example string
	Result  template.HTML
	Tips    bool
	Styles  template.CSS
}

func newPageData(app *app.App) pageData {
	return pageData{
		Categories: taxonomy.Categories(),
		Examples:   taxonomy.Examples(),
		Model:      app.Loader.Info(),
		MaxLength:  MaxClaimLength,
		Styles:     template.CSS(presenter.Stylesheet()),
	}
}

func showPage(c *gin.Context) {
	app := c.MustGet("app").(*app.App)
	c.HTML(http.StatusOK, "index.tmpl", newPageData(app))
}

// analyzeClaim handles the form. A selected example takes precedence over
// the free text.
func analyzeClaim(c *gin.Context) {
	app := c.MustGet("app").(*app.App)
	log := app.Logger.With(zap.String("request_id", c.GetString("request_id")))

	data := newPageData(app)
	data.Claim = c.PostForm("claim")
	data.Example = c.PostForm("example")
	if ex, ok := taxonomy.ExampleByName(data.Example); ok {
		data.Claim = ex.Text
	}

	r := presenter.NewHTMLRenderer()
	status := http.StatusOK

	switch err := validateClaim(data.Claim); {
	case errors.Is(err, ErrEmptyClaim):
		presenter.Warn(r, "Please enter a claim to analyze.")
		app.Metrics.ObserveSubmission(metrics.OutcomeEmpty)
	case errors.Is(err, ErrClaimTooLong):
		presenter.Warn(r, "Please shorten the claim to at most 5000 characters.")
		status = http.StatusRequestEntityTooLarge
		app.Metrics.ObserveSubmission(metrics.OutcomeTooLong)
	default:
		status = analyze(c, app, log, r, data.Claim)
		data.Tips = status == http.StatusOK
	}

	data.Result = r.HTML()
	c.HTML(status, "index.tmpl", data)
}

func validateClaim(text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyClaim
	}
	if utf8.RuneCountInString(text) > MaxClaimLength {
		return ErrClaimTooLong
	}
	return nil
}

func analyze(c *gin.Context, app *app.App, log *zap.Logger, r presenter.Renderer, text string) int {
	clf := app.Classifier()
	if clf == nil {
		presenter.Warn(r, "The model is still loading. Please try again in a moment.")
		app.Metrics.ObserveSubmission(metrics.OutcomeUnavailable)
		return http.StatusServiceUnavailable
	}

	analysis, err := clf.Analyze(c.Request.Context(), text)
	if err != nil {
		var cerr *classifier.ClassificationError
		switch {
		case errors.Is(err, classifier.ErrModelUnavailable):
			presenter.Fail(r, "Model not loaded. Please check the server logs.")
			app.Metrics.ObserveSubmission(metrics.OutcomeUnavailable)
			return http.StatusServiceUnavailable
		case errors.As(err, &cerr):
			log.Error("classification failed", zap.String("kind", string(cerr.Kind)), zap.Error(cerr.Err))
		default:
			log.Error("classification failed", zap.Error(err))
		}
		presenter.Fail(r, "Error during analysis: "+err.Error())
		app.Metrics.ObserveSubmission(metrics.OutcomeFailed)
		return http.StatusBadGateway
	}

	rep, err := presenter.Present(analysis)
	if err != nil {
		log.Error("failed to present analysis", zap.String("id", analysis.ID), zap.Error(err))
		presenter.Fail(r, "Error during analysis: "+err.Error())
		app.Metrics.ObserveSubmission(metrics.OutcomeFailed)
		return http.StatusBadGateway
	}
	if len(rep.Unmapped) > 0 {
		log.Debug("indicators outside every bucket", zap.Strings("labels", rep.Unmapped))
	}

	presenter.Render(r, rep)
	app.Metrics.ObserveSubmission(metrics.OutcomeAnalyzed)
	log.Info("claim analyzed",
		zap.String("id", analysis.ID),
		zap.String("prediction", rep.Prediction),
		zap.Float64("confidence", rep.Confidence),
		zap.Duration("elapsed", analysis.Elapsed),
	)

	return http.StatusOK
}

func healthz(c *gin.Context) {
	app := c.MustGet("app").(*app.App)
	info := app.Loader.Info()

	status, code := "ok", http.StatusOK
	if info.State == model.StateFailed {
		status, code = "failed", http.StatusServiceUnavailable
	}

	c.JSON(code, gin.H{
		"status": status,
		"model":  info.State,
		"info":   info,
	})
}
