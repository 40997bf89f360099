package services

import (
	"context"
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/quantum-builds/VinAudit/metrics"
	"github.com/quantum-builds/VinAudit/models"
	"github.com/quantum-builds/VinAudit/storage"
	"github.com/quantum-builds/VinAudit/utils"
)

// DefaultSampleLimit caps the listings an estimate is computed from.
const DefaultSampleLimit = 100

// Estimator answers price queries from cached predictions, fitting and
// caching a new one on a miss.
type Estimator struct {
	db          *storage.DB
	logger      *utils.Logger
	metrics     *metrics.Metrics
	sampleLimit int
	now         func() time.Time
}

// NewEstimator creates an Estimator. A sampleLimit below 1 uses
// DefaultSampleLimit. m may be nil.
func NewEstimator(db *storage.DB, logger *utils.Logger, m *metrics.Metrics, sampleLimit int) *Estimator {
	if logger == nil {
		logger = utils.NewNopLogger()
	}
	if sampleLimit < 1 {
		sampleLimit = DefaultSampleLimit
	}
	return &Estimator{
		db:          db,
		logger:      logger,
		metrics:     m,
		sampleLimit: sampleLimit,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

type parsedQuery struct {
	year    *int
	make    string
	model   string
	mileage *int
}

func parseQuery(q models.EstimateQuery) (parsedQuery, error) {
	p := parsedQuery{
		make:  strings.TrimSpace(q.Make),
		model: strings.TrimSpace(q.Model),
	}
	if s := strings.TrimSpace(q.Year); s != "" {
		y, err := strconv.Atoi(s)
		if err != nil {
			return p, err
		}
		p.year = &y
	}
	if s := strings.TrimSpace(q.Mileage); s != "" {
		m, err := strconv.Atoi(s)
		if err != nil {
			return p, err
		}
		p.mileage = &m
	}
	return p, nil
}

// Estimate returns the rounded price estimate for q along with the sample
// listings it was drawn from. It never fails: a zero price means there was
// no usable data, and Outcome says why.
func (e *Estimator) Estimate(ctx context.Context, q models.EstimateQuery) models.Estimate {
	est, price := e.estimate(ctx, q)
	est.Price = roundToHundred(price)
	e.metrics.Prediction(string(est.Outcome))
	return est
}

// estimate returns the unrounded price separately so rounding happens once.
func (e *Estimator) estimate(ctx context.Context, q models.EstimateQuery) (models.Estimate, float64) {
	pq, err := parseQuery(q)
	if err != nil {
		e.logger.Debug("[estimate] invalid query %+v: %v", q, err)
		return models.Estimate{Outcome: models.OutcomeInvalidQuery}, 0
	}

	samples, err := storage.SampleListings(ctx, e.db.Querier(), storage.ListingFilter{
		Year:  pq.year,
		Make:  pq.make,
		Model: pq.model,
		Limit: e.sampleLimit,
	})
	if err != nil {
		e.logger.Error("[estimate] sampling listings failed: %v", err)
	}
	est := models.Estimate{Samples: samples, SampleSize: len(samples)}

	if pq.year == nil || pq.make == "" || pq.model == "" {
		est.Outcome = models.OutcomeNoQuery
		return est, 0
	}

	modelID, err := storage.FindVehicleModel(ctx, e.db.Querier(), models.VehicleModelKey{Make: pq.make, Model: pq.model})
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			e.logger.Error("[estimate] resolving %s %s failed: %v", pq.make, pq.model, err)
		}
		est.Outcome = models.OutcomeUnknownModel
		return est, 0
	}

	cached, err := storage.FindPrediction(ctx, e.db.Querier(), *pq.year, modelID, pq.mileage)
	switch {
	case err == nil:
		if err := storage.TouchPrediction(ctx, e.db.Querier(), cached.ID, e.now()); err != nil {
			e.logger.Warn("[estimate] touching prediction %d failed: %v", cached.ID, err)
		}
		est.Outcome = models.OutcomeHit
		est.Confidence = cached.ConfidenceScore
		return est, cached.PredictedPrice
	case !errors.Is(err, storage.ErrNotFound):
		e.logger.Error("[estimate] prediction lookup failed: %v", err)
	}

	xs, ys := regressionPoints(samples)
	line, err := FitLine(xs, ys)
	if err != nil {
		est.Outcome = models.OutcomeInsufficient
		return est, 0
	}

	predicted := line.At(Median(xs))
	confidence := RSquared(line, xs, ys)

	now := e.now()
	p := &models.Prediction{
		Year:            *pq.year,
		ModelID:         modelID,
		Mileage:         pq.mileage,
		PredictedPrice:  predicted,
		ConfidenceScore: confidence,
		SampleSize:      len(xs),
		CreatedAt:       now,
		LastUsedAt:      now,
	}
	if err := storage.InsertPrediction(ctx, e.db.Querier(), p); err != nil {
		e.logger.Error("[estimate] caching prediction failed: %v", err)
	}

	est.Outcome = models.OutcomeMiss
	est.Confidence = confidence
	return est, predicted
}

// ListMakes returns every distinct make in the store.
func (e *Estimator) ListMakes(ctx context.Context) ([]string, error) {
	return storage.ListMakes(ctx, e.db.Querier())
}

// ListModels returns the models known for vehicleMake.
func (e *Estimator) ListModels(ctx context.Context, vehicleMake string) ([]string, error) {
	return storage.ListModels(ctx, e.db.Querier(), vehicleMake)
}

// regressionPoints pairs mileage with price for the samples that carry both.
func regressionPoints(samples []*models.Listing) (xs, ys []float64) {
	for _, l := range samples {
		if l.Mileage == nil || !l.Price.Valid {
			continue
		}
		xs = append(xs, float64(*l.Mileage))
		ys = append(ys, l.Price.Decimal.InexactFloat64())
	}
	return xs, ys
}

func roundToHundred(v float64) int64 {
	return int64(math.RoundToEven(v/100)) * 100
}
