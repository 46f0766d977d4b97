package artifact

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/streamwise/churn/internal/domain/port"
	"github.com/streamwise/churn/internal/domain/service"
	"github.com/streamwise/churn/internal/infrastructure/ml"
)

type scalerDoc struct {
	Columns []string  `json:"columns"`
	Mean    []float64 `json:"mean"`
	Scale   []float64 `json:"scale"`
}

// Load reads, cross-checks and wires one artifact set into a bundle.
func Load(ctx context.Context, src Source) (*port.ArtifactBundle, error) {
	manifest, err := ReadManifest(ctx, src)
	if err != nil {
		return nil, err
	}

	var columns []string
	schemaBytes, err := readJSON(ctx, src, manifest.Files.FeatureColumns, &columns)
	if err != nil {
		return nil, err
	}
	schema, err := service.NewFeatureSchema(columns)
	if err != nil {
		return nil, fmt.Errorf("artifact: %s: %w", manifest.Files.FeatureColumns, err)
	}

	var sd scalerDoc
	scalerBytes, err := readJSON(ctx, src, manifest.Files.Scaler, &sd)
	if err != nil {
		return nil, err
	}
	scaler, err := service.NewStandardScaler(sd.Columns, sd.Mean, sd.Scale)
	if err != nil {
		return nil, fmt.Errorf("artifact: %s: %w", manifest.Files.Scaler, err)
	}

	encoder, err := service.NewFeatureEncoder(schema, scaler)
	if err != nil {
		return nil, fmt.Errorf("artifact: %w", err)
	}

	modelBytes, err := src.ReadFile(ctx, manifest.Files.Model)
	if err != nil {
		return nil, err
	}
	classifier, err := ml.Decode(modelBytes)
	if err != nil {
		return nil, fmt.Errorf("artifact: %s: %w", manifest.Files.Model, err)
	}

	predictor, err := service.NewChurnPredictor(encoder, classifier, manifest.Threshold)
	if err != nil {
		return nil, fmt.Errorf("artifact: %w", err)
	}

	return &port.ArtifactBundle{
		Predictor:    predictor,
		Columns:      schema.Columns(),
		ModelVersion: modelVersion(manifest, classifier, modelBytes),
		Digest:       bundleDigest(predictor.Threshold(), schemaBytes, scalerBytes, modelBytes),
		ModelType:    ml.TypeOf(classifier),
		Threshold:    predictor.Threshold(),
		Source:       src.String(),
		LoadedAt:     time.Now().UTC(),
	}, nil
}

// modelVersion prefers the manifest, then the model's own tag, then a
// content digest.
func modelVersion(m Manifest, c interface{ Version() string }, modelBytes []byte) string {
	if m.ModelVersion != "" {
		return m.ModelVersion
	}
	if v := c.Version(); v != "" {
		return v
	}
	sum := sha256.Sum256(modelBytes)
	return "sha256:" + hex.EncodeToString(sum[:6])
}

// bundleDigest identifies the exact artifact content in use. Each part is
// length-prefixed so moving bytes between files changes the digest.
func bundleDigest(threshold float64, parts ...[]byte) string {
	h := sha256.New()
	var buf [8]byte
	for _, part := range parts {
		binary.BigEndian.PutUint64(buf[:], uint64(len(part)))
		h.Write(buf[:])
		h.Write(part)
	}
	binary.BigEndian.PutUint64(buf[:], math.Float64bits(threshold))
	h.Write(buf[:])
	return hex.EncodeToString(h.Sum(nil))
}

func readJSON(ctx context.Context, src Source, name string, v any) ([]byte, error) {
	data, err := src.ReadFile(ctx, name)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return nil, fmt.Errorf("artifact: parse %s: %w", name, err)
	}
	return data, nil
}
