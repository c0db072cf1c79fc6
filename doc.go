// Package mentoraid predicts student dropout from enrolment, academic and
// socio-economic records.
//
// MentorAid offers a scikit-learn-like API on top of gonum so the models of
// the dropout study can be trained, tuned and shipped from Go.
//
// # Workflow
//
// The mentoraid command runs the three stages of the study:
//
//	mentoraid tune     # default vs tuned comparison of every model family
//	mentoraid audit    # check a saved model against the saved feature list
//	mentoraid report   # write the model documentation as HTML
//
// Every subcommand works without flags; paths and grids come from the
// defaults in package config or from a YAML file given with --config.
//
// # Quick Start
//
//	frame, err := dataset.LoadCSV("ml-models/datasets/dataset.csv")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	prepared, err := preprocessing.Prepare(frame, preprocessing.DefaultPipelineConfig(), nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	runner := tuning.NewRunner(tuning.DefaultConfig(), tuning.WithOutput(os.Stdout))
//	results, err := runner.Run(ctx, prepared)
//
// # Packages
//
//   - dataset: CSV loading into a column frame
//   - preprocessing: IQR outlier filter, StandardScaler, LabelEncoder, RandomOverSampler
//   - sklearn/tree, sklearn/ensemble: DecisionTreeClassifier, RandomForestClassifier
//   - sklearn/linear_model: LogisticRegression
//   - sklearn/svm: SVC
//   - sklearn/neighbors: KNeighborsClassifier
//   - neural: small feed-forward networks for binary classification
//   - model_selection: StratifiedKFold, CrossValScore, GridSearchCV, RandomizedSearchCV
//   - metrics: accuracy, precision, recall, F1, confusion matrix
//   - tuning: per-family default vs tuned comparison and artifacts
//   - audit: feature list consistency check
//   - report: documentation builder (Markdown, HTML, charts)
//   - core/model: estimator interfaces, parameters and persistence
//   - pkg/errors, pkg/log: error types and structured logging
//
// # Data Leakage
//
// The study oversamples the whole data set before cross-validation, which
// makes every reported accuracy optimistic. tuning keeps that behaviour by
// default and emits a DataLeakageWarning; set resample_inside_folds to
// rebalance each training fold instead.
package mentoraid
