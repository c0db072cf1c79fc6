package model

import (
	"encoding/gob"
	"io"
	"os"
	"path/filepath"
	"time"

	mlerrors "github.com/YuminosukeSato/mentoraid/pkg/errors"
)

// Artifact is a fitted classifier bound to the feature set and label
// encoding it was trained on. It is what the tuning pipeline writes and
// the feature auditor reads.
//
// Estimator must be a concrete type registered with gob.Register; every
// classifier package registers its types in init.
type Artifact struct {
	Name         string
	RunID        string
	CreatedAt    time.Time
	FeatureNames []string
	Classes      []string
	Params       map[string]string
	Estimator    Classifier
}

// NFeatures returns the number of input columns the estimator expects.
func (a *Artifact) NFeatures() int {
	return len(a.FeatureNames)
}

// FittedFeatures returns the input width of the wrapped estimator. ok is
// false when the estimator does not report it.
func (a *Artifact) FittedFeatures() (n int, ok bool) {
	fc, ok := a.Estimator.(FeatureCounter)
	if !ok {
		return 0, false
	}
	return fc.NFeaturesIn(), true
}

// SaveModel はモデルをファイルに保存する
//
// パラメータ:
//   - model: 保存する値（gobでエンコード可能なもの）
//   - filename: 保存先のファイルパス
//
// 使用例:
//
//	err := model.SaveModel(artifact, "svm_tuned_model.gob")
func SaveModel(model interface{}, filename string) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return mlerrors.Wrapf(err, "failed to create directory %s", dir)
		}
	}
	file, err := os.Create(filename)
	if err != nil {
		return mlerrors.Wrap(err, "failed to create file")
	}
	defer file.Close()

	return SaveModelToWriter(model, file)
}

// LoadModel はファイルからモデルを読み込む
//
//	var a model.Artifact
//	err := model.LoadModel(&a, "svm_tuned_model.gob")
func LoadModel(model interface{}, filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return mlerrors.Wrap(err, "failed to open file")
	}
	defer file.Close()

	return LoadModelFromReader(model, file)
}

// SaveModelToWriter はモデルをio.Writerに保存する
func SaveModelToWriter(model interface{}, w io.Writer) error {
	encoder := gob.NewEncoder(w)
	if err := encoder.Encode(model); err != nil {
		return mlerrors.Wrap(err, "failed to encode model")
	}
	return nil
}

// LoadModelFromReader はio.Readerからモデルを読み込む
func LoadModelFromReader(model interface{}, r io.Reader) error {
	decoder := gob.NewDecoder(r)
	if err := decoder.Decode(model); err != nil {
		return mlerrors.Wrap(err, "failed to decode model")
	}
	return nil
}

// SaveArtifact writes a to path.
func SaveArtifact(a *Artifact, path string) error {
	if a == nil || a.Estimator == nil {
		return mlerrors.NewValueError("SaveArtifact", "artifact has no estimator")
	}
	return SaveModel(a, path)
}

// LoadArtifact reads an artifact written by SaveArtifact.
func LoadArtifact(path string) (*Artifact, error) {
	var a Artifact
	if err := LoadModel(&a, path); err != nil {
		return nil, mlerrors.Wrapf(err, "load artifact %s", path)
	}
	return &a, nil
}

// LoadArtifactFor reads an artifact and checks that its feature names equal
// features, as sets and in order. A "Target" entry in features is ignored.
// On mismatch the returned error is a FeatureMismatchError.
func LoadArtifactFor(path string, features []string) (*Artifact, error) {
	a, err := LoadArtifact(path)
	if err != nil {
		return nil, err
	}
	inModel, inList, order := CompareFeatures(a.FeatureNames, StripLabel(features))
	if len(inModel) > 0 || len(inList) > 0 || order >= 0 {
		return nil, mlerrors.NewFeatureMismatchError(inModel, inList, order)
	}
	return a, nil
}
