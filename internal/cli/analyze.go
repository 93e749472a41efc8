package cli

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/AI2HU/geolens/internal/geo"
	"github.com/AI2HU/geolens/internal/models"
	"github.com/AI2HU/geolens/internal/services"
)

var (
	analyzeBrand       string
	analyzeWebsite     string
	analyzeCountry     string
	analyzeCompetitors []string
	analyzeQueries     []string
	analyzeModels      []string
	analyzeQueryCount  int
	analyzeVerbose     bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run a one-shot GEO analysis from the command line",
	Long: `Ask the configured LLMs about a brand and print the aggregated GEO
metrics. Queries can be passed explicitly with --query; otherwise the brand
is profiled first and a query set is generated from its industry.`,
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeBrand, "brand", "b", "", "Brand name to analyze (required)")
	analyzeCmd.Flags().StringVarP(&analyzeWebsite, "website", "w", "", "Brand website, improves discovery")
	analyzeCmd.Flags().StringVar(&analyzeCountry, "country", "", "Market to analyze, defaults to worldwide")
	analyzeCmd.Flags().StringSliceVarP(&analyzeCompetitors, "competitor", "c", nil, "Competitor to track (repeatable)")
	analyzeCmd.Flags().StringSliceVarP(&analyzeQueries, "query", "q", nil, "Search query to test (repeatable)")
	analyzeCmd.Flags().StringSliceVarP(&analyzeModels, "model", "m", nil, "Model to test (repeatable, defaults to config)")
	analyzeCmd.Flags().IntVar(&analyzeQueryCount, "query-count", 10, "Number of queries to generate when none are given")
	analyzeCmd.Flags().BoolVarP(&analyzeVerbose, "verbose", "v", false, "Print every progress event")
	analyzeCmd.MarkFlagRequired("brand")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	llmModels := analyzeModels
	if len(llmModels) == 0 {
		llmModels = cfg.LLM.DefaultModels
	}

	fmt.Println(FormatHeader("🔍 GEO Analysis"))
	fmt.Println(FormatHeader("==============="))
	fmt.Println(FormatLabelValue("Brand:", analyzeBrand))
	fmt.Println(FormatLabelValue("Models:", fmt.Sprintf("%v", llmModels)))

	queries := analyzeQueries
	competitors := analyzeCompetitors

	if len(queries) == 0 {
		brandService := services.NewBrandService(llmRegistry, cfg.LLM.DiscoveryModel, cfg.LLM.DefaultProvider)
		queryService := services.NewQueryService(llmRegistry, cfg.LLM.DiscoveryModel, cfg.LLM.DefaultProvider)

		fmt.Println()
		fmt.Println(FormatInfo("No queries given, profiling the brand first..."))

		info, err := brandService.Discover(ctx, analyzeBrand, analyzeWebsite, analyzeCountry)
		if err != nil {
			return fmt.Errorf("brand discovery failed: %w", err)
		}
		fmt.Println(FormatLabelValue("Industry:", info.Industry))
		if len(info.Competitors) > 0 {
			fmt.Println(FormatLabelValue("Competitors:", fmt.Sprintf("%v", info.Competitors)))
		}
		if len(competitors) == 0 {
			competitors = info.Competitors
		}

		queries, err = queryService.GenerateQueries(ctx, &services.GenerationRequest{
			BrandName:   analyzeBrand,
			Country:     analyzeCountry,
			Description: info.Description,
			Industry:    info.Industry,
			Count:       analyzeQueryCount,
		})
		if err != nil {
			return fmt.Errorf("query generation failed: %w", err)
		}
	}

	req := &models.AnalysisRequest{
		BrandName:   analyzeBrand,
		Competitors: competitors,
		Models:      llmModels,
	}
	for _, q := range queries {
		req.Queries = append(req.Queries, models.Query{Text: q})
	}

	fmt.Println()
	fmt.Printf("Testing %s queries across %s models (%s calls)...\n",
		FormatCount(len(queries)), FormatCount(len(llmModels)), FormatCount(req.TotalTests()))
	fmt.Println()

	start := time.Now()
	result, err := analyzer.RunStreaming(ctx, req, printProgress)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	printResult(result, time.Since(start))
	return nil
}

// printProgress writes analysis events to the terminal. Without --verbose
// only the milestones are shown.
func printProgress(event geo.Event) {
	switch event.Step {
	case geo.StepModelStart, geo.StepBrandFound, geo.StepBrandNotFound, geo.StepComplete:
		fmt.Println(FormatDim(event.Message))
	default:
		if analyzeVerbose {
			fmt.Println(FormatDim(event.Message))
		}
	}
}

func printResult(result *models.AnalysisResult, elapsed time.Duration) {
	m := result.OverallMetrics

	mentions := 0
	for _, record := range result.QueryPerformance {
		if record.BrandMentioned {
			mentions++
		}
	}

	fmt.Println()
	fmt.Println(FormatHeader("📊 Results"))
	fmt.Println(FormatHeader("=========="))
	fmt.Println(FormatLabelValue("Visibility score:", fmt.Sprintf("%.1f", m.BrandVisibilityScore)))
	fmt.Println(FormatLabelValue("Mention rate:", fmt.Sprintf("%.1f%% (%d of %d answers)", m.MentionRate, mentions, len(result.QueryPerformance))))
	if mentions > 0 {
		fmt.Println(FormatLabelValue("Average position:", fmt.Sprintf("%.1f", m.AverageMentionPosition)))
		fmt.Println(FormatLabelValue("Positive positioning:", fmt.Sprintf("%.1f%%", m.PositivePositioning)))
	}
	fmt.Println(FormatLabelValue("Elapsed:", formatDuration(elapsed)))

	fmt.Println()
	fmt.Println(FormatTitle("Per model"))
	modelNames := make([]string, 0, len(result.ModelPerformance))
	for name := range result.ModelPerformance {
		modelNames = append(modelNames, name)
	}
	sort.Strings(modelNames)
	for _, name := range modelNames {
		perf := result.ModelPerformance[name]
		fmt.Printf("  %s mention rate %.1f%%, avg position %.1f\n",
			FormatValue(name), perf.MentionRate, perf.AveragePosition)
	}

	if len(result.CompetitorAnalysis) > 0 {
		fmt.Println()
		fmt.Println(FormatTitle("Competitors"))
		competitorNames := make([]string, 0, len(result.CompetitorAnalysis))
		for name := range result.CompetitorAnalysis {
			competitorNames = append(competitorNames, name)
		}
		sort.Strings(competitorNames)
		for _, name := range competitorNames {
			summary := result.CompetitorAnalysis[name]
			fmt.Printf("  %s mentioned %s times\n", FormatValue(name), FormatCount(summary.Mentions))
		}
	}

	if len(result.OptimizationSuggestions) > 0 {
		fmt.Println()
		fmt.Println(FormatTitle("Suggestions"))
		for _, suggestion := range result.OptimizationSuggestions {
			fmt.Println("  " + suggestion)
		}
	}
}
