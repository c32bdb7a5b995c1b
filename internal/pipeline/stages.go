package pipeline

// Canonical stage names, declared as constants for compile-time safety.
const (
	StageContentLoad      = "content/load"
	StageDataLoad         = "data/load"
	StageStaticLoad       = "static/load"
	StagePagesCreate      = "pages/create"
	StagePagesConvert     = "pages/convert"
	StageTaxonomiesCreate = "taxonomies/create"
	StagePagesGenerate    = "pages/generate"
	StageMenusCreate      = "menus/create"
	StageStaticCopy       = "static/copy"
	StagePagesRender      = "pages/render"
	StagePagesSave        = "pages/save"
	StageAssetsSave       = "assets/save"
	StageOptimizeHTML     = "optimize/html"
	StageOptimizeCSS      = "optimize/css"
	StageOptimizeJS       = "optimize/js"
)

// defaultStages is the static ordered registry. Execution order equals
// declaration order; eligibility is the only conditional branch.
func defaultStages() []Stage {
	return []Stage{
		&contentLoadStage{},
		&dataLoadStage{},
		&staticLoadStage{},
		&pagesCreateStage{},
		&pagesConvertStage{},
		&taxonomiesCreateStage{},
		&pagesGenerateStage{},
		&menusCreateStage{},
		&staticCopyStage{},
		&pagesRenderStage{},
		&pagesSaveStage{},
		&assetsSaveStage{},
		&optimizeStage{name: StageOptimizeHTML, mode: "html"},
		&optimizeStage{name: StageOptimizeCSS, mode: "css"},
		&optimizeStage{name: StageOptimizeJS, mode: "js"},
	}
}

// StageNames returns the declared order, executed or not. Useful for
// diagnostics output.
func StageNames() []string {
	stages := defaultStages()
	names := make([]string, len(stages))
	for i, s := range stages {
		names[i] = s.Name()
	}
	return names
}
