package log

// Model and operation context.
const (
	// ModelNameKey identifies the estimator type, e.g. "SVC".
	ModelNameKey = "model.name"

	// FamilyKey identifies a classifier family of the tuning run, e.g. "Random Forest".
	FamilyKey = "model.family"

	// OperationKey specifies the operation being performed.
	OperationKey = "ml.operation"

	// ComponentKey identifies the package doing the work.
	ComponentKey = "ml.component"

	// PhaseKey indicates the lifecycle phase.
	PhaseKey = "ml.phase"

	// RunIDKey identifies one invocation of a batch job.
	RunIDKey = "run.id"
)

// Data shape.
const (
	SamplesKey  = "data.samples"
	FeaturesKey = "data.features"
	ClassesKey  = "data.classes"
	PathKey     = "data.path"
	SizeKey     = "data.size_bytes"
	FoldKey     = "cv.fold"
	FoldsKey    = "cv.folds"
)

// Performance and metrics.
const (
	DurationMsKey      = "perf.duration_ms"
	DurationSecondsKey = "perf.duration_seconds"
	AccuracyKey        = "metrics.accuracy"
	StdKey             = "metrics.std"
	ImprovementKey     = "metrics.improvement_pct"
	LossKey            = "metrics.loss"
	EpochKey           = "training.epoch"
	IterationKey       = "training.iteration"
	CandidatesKey      = "search.candidates"
)

// Configuration.
const (
	HyperParamsKey = "model.hyperparams"
	RandomSeedKey  = "config.random_seed"
)

// Error context.
const (
	ErrorKey      = "error"
	StacktraceKey = "stacktrace"
)

// Standard attribute values.
const (
	OperationFit       = "fit"
	OperationPredict   = "predict"
	OperationTransform = "transform"
	OperationScore     = "score"
	OperationSearch    = "search"
	OperationSave      = "save"
	OperationLoad      = "load"

	PhaseTraining      = "training"
	PhaseValidation    = "validation"
	PhasePreprocessing = "preprocessing"
	PhaseReporting     = "reporting"
)
