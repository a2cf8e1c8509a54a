package tools

import (
	"context"
	"fmt"

	"pensionadvisor/internal/pension"
	"pensionadvisor/internal/projection"
	"pensionadvisor/internal/reqctx"
)

// resolveTarget runs the C6 choke point every per-user tool goes through
// before any read: parse the input, resolve user_id (explicit arg, else
// request context), then resolve the effective target through the scope
// resolver. Returns ok=false with a ready-to-return error result when
// authentication or the read itself fails.
func resolveTarget(ctx context.Context, d Deps, rawInput string) (args ParsedArgs, effectiveID int, record pension.Record, errResult map[string]any, ok bool) {
	args = ParseActionInput(rawInput)

	callerID, found := ResolveUserID(ctx, args.UserID)
	if !found {
		return args, 0, pension.Record{}, errorResult(errNotAuthenticated), false
	}

	query := args.Query
	if query == "" {
		query, _ = reqctx.Query(ctx)
	}

	effectiveID, _, err := d.Resolver.Resolve(ctx, callerID, query)
	if err != nil {
		return args, 0, pension.Record{}, errorResult(fmt.Sprintf("scope resolution failed: %v", err)), false
	}

	rec, err := d.Records.Read(ctx, effectiveID)
	if err != nil {
		if err == pension.ErrNotFound {
			return args, effectiveID, pension.Record{}, errorResult(fmt.Sprintf("No pension data found for User ID: %d", effectiveID)), false
		}
		return args, effectiveID, pension.Record{}, errorResult(fmt.Sprintf("failed to read pension record: %v", err)), false
	}

	return args, effectiveID, rec, nil, true
}

// resolveEffectiveID runs the same C6 choke point as resolveTarget but for
// tools that never read a pension record (the document-retrieval tools):
// resolve the caller, then resolve the effective target id through the
// scope resolver, so an advisor or regulator asking about a client's
// documents searches the client's collection rather than their own.
func resolveEffectiveID(ctx context.Context, d Deps, args ParsedArgs) (effectiveID int, errResult map[string]any, ok bool) {
	callerID, found := ResolveUserID(ctx, args.UserID)
	if !found {
		return 0, errorResult(errNotAuthenticated), false
	}

	query := args.Query
	if query == "" {
		query, _ = reqctx.Query(ctx)
	}

	effectiveID, _, err := d.Resolver.Resolve(ctx, callerID, query)
	if err != nil {
		return 0, errorResult(fmt.Sprintf("scope resolution failed: %v", err)), false
	}
	return effectiveID, nil, true
}

// RiskProfileTool implements analyze_risk_profile.
type RiskProfileTool struct{ Deps }

func (t *RiskProfileTool) Name() string { return "analyze_risk_profile" }

func (t *RiskProfileTool) Execute(ctx context.Context, rawInput string) map[string]any {
	_, effectiveID, rec, errResult, ok := resolveTarget(ctx, t.Deps, rawInput)
	if !ok {
		return errResult
	}
	res := t.ML.AnalyzeRisk(rec)
	return map[string]any{
		"user_id":         effectiveID,
		"risk_level":      string(res.Level),
		"risk_score":      res.Score,
		"confidence":      res.Confidence,
		"method":          string(res.Method),
		"ml_model_used":   res.MLModelUsed,
		"factors":         res.Factors,
		"recommendations": res.Recommendations,
		"data_source":     res.DataSource,
	}
}

// FraudDetectionTool implements detect_fraud.
type FraudDetectionTool struct{ Deps }

func (t *FraudDetectionTool) Name() string { return "detect_fraud" }

func (t *FraudDetectionTool) Execute(ctx context.Context, rawInput string) map[string]any {
	_, effectiveID, rec, errResult, ok := resolveTarget(ctx, t.Deps, rawInput)
	if !ok {
		return errResult
	}
	res := t.ML.AnalyzeFraud(rec)
	return map[string]any{
		"user_id":         effectiveID,
		"fraud_level":     string(res.Level),
		"fraud_score":     res.Score,
		"confidence":      res.Confidence,
		"method":          string(res.Method),
		"ml_model_used":   res.MLModelUsed,
		"factors":         res.Factors,
		"recommendations": res.Recommendations,
		"data_source":     res.DataSource,
	}
}

// ProjectPensionTool implements project_pension.
type ProjectPensionTool struct{ Deps }

func (t *ProjectPensionTool) Name() string { return "project_pension" }

func (t *ProjectPensionTool) Execute(ctx context.Context, rawInput string) map[string]any {
	args, effectiveID, rec, errResult, ok := resolveTarget(ctx, t.Deps, rawInput)
	if !ok {
		return errResult
	}
	query := args.Query
	if query == "" {
		query, _ = reqctx.Query(ctx)
	}
	res := t.Proj.Project(rec, query)
	specs := projection.ChartSpecs(rec, res)

	chartPayload := make([]map[string]any, 0, len(specs))
	for _, s := range specs {
		chartPayload = append(chartPayload, map[string]any{
			"title":    s.Title,
			"mark":     s.Mark,
			"data":     s.Data,
			"encoding": s.Encoding,
		})
	}

	return map[string]any{
		"user_id":                  effectiveID,
		"projected_balance":        res.ProjectedBalance,
		"inflation_adjusted_value": res.InflationAdjustedValue,
		"horizon_years":            res.Horizon,
		"effective_rate":           res.EffectiveRate,
		"retirement_goal":          res.RetirementGoal,
		"progress_pct":             res.Progress,
		"status":                   res.Status,
		"savings_rate":             res.SavingsRate,
		"cap_hit":                  res.CapHit,
		"warnings":                 res.Warnings,
		"uplift_10pct":             res.Uplift10Pct,
		"uplift_20pct":             res.Uplift20Pct,
		"pension_type":             string(res.PensionType),
		"charts":                   chartPayload,
		"data_source":              res.DataSource,
	}
}

const (
	pdfStatusFoundAndSearched = "PDFS_FOUND_AND_SEARCHED"
	pdfStatusNoPDFsFound      = "NO_PDFS_FOUND"
	pdfStatusError            = "ERROR_OCCURRED"
	searchTypePDFDocument     = "PDF_DOCUMENT_SEARCH"
	ocrPlaceholder            = "[scanned image - ocr not available]"
)

// KnowledgeBaseQueryTool implements query_knowledge_base: top-3 chunks from
// the private document collection of the user the scope resolver selects.
type KnowledgeBaseQueryTool struct{ Deps }

func (t *KnowledgeBaseQueryTool) Name() string { return "query_knowledge_base" }

func (t *KnowledgeBaseQueryTool) Execute(ctx context.Context, rawInput string) map[string]any {
	args := ParseActionInput(rawInput)
	if args.Query == "" {
		return errorResult("query is required")
	}
	userID, errResult, ok := resolveEffectiveID(ctx, t.Deps, args)
	if !ok {
		return errResult
	}

	res, err := t.Vectors.Query(ctx, fmt.Sprintf("user_%d_docs", userID), args.Query, 3, nil)
	if err != nil {
		return mergeStatus(errorResult(fmt.Sprintf("retrieval failed: %v", err)), pdfStatusError)
	}
	if len(res.Documents) == 0 {
		return map[string]any{
			"user_id":      userID,
			"documents":    []string{},
			"suggestions":  []string{"Try uploading a pension plan document", "Ask about your risk profile or projected pension instead"},
			"search_type":  searchTypePDFDocument,
			"pdf_status":   pdfStatusNoPDFsFound,
		}
	}

	documents := scrubOCRPlaceholders(res.Documents)
	return map[string]any{
		"user_id":     userID,
		"documents":   documents,
		"metadatas":   res.Metadatas,
		"similarity":  res.Similarity,
		"search_type": searchTypePDFDocument,
		"pdf_status":  pdfStatusFoundAndSearched,
	}
}

// AnalyzeDocumentTool implements analyze_uploaded_document: same collection,
// top-5, stamped as document analysis rather than a raw KB query.
type AnalyzeDocumentTool struct{ Deps }

func (t *AnalyzeDocumentTool) Name() string { return "analyze_uploaded_document" }

func (t *AnalyzeDocumentTool) Execute(ctx context.Context, rawInput string) map[string]any {
	args := ParseActionInput(rawInput)
	if args.Query == "" {
		return errorResult("query is required")
	}
	userID, errResult, ok := resolveEffectiveID(ctx, t.Deps, args)
	if !ok {
		return errResult
	}

	res, err := t.Vectors.Query(ctx, fmt.Sprintf("user_%d_docs", userID), args.Query, 5, nil)
	if err != nil {
		return mergeStatus(errorResult(fmt.Sprintf("retrieval failed: %v", err)), pdfStatusError)
	}
	if len(res.Documents) == 0 {
		return map[string]any{
			"user_id":           userID,
			"documents":         []string{},
			"document_analysis": true,
			"pdf_status":        pdfStatusNoPDFsFound,
		}
	}
	return map[string]any{
		"user_id":           userID,
		"documents":         scrubOCRPlaceholders(res.Documents),
		"metadatas":         res.Metadatas,
		"similarity":        res.Similarity,
		"document_analysis": true,
		"pdf_status":        pdfStatusFoundAndSearched,
	}
}

// KnowledgeBaseSearchTool implements knowledge_base_search: union of the
// shared knowledge base (top 2) and the private collection of the user the
// scope resolver selects (top 3), sorted by similarity descending and
// re-numbered.
type KnowledgeBaseSearchTool struct{ Deps }

func (t *KnowledgeBaseSearchTool) Name() string { return "knowledge_base_search" }

func (t *KnowledgeBaseSearchTool) Execute(ctx context.Context, rawInput string) map[string]any {
	args := ParseActionInput(rawInput)
	if args.Query == "" {
		return errorResult("query is required")
	}
	userID, errResult, ok := resolveEffectiveID(ctx, t.Deps, args)
	if !ok {
		return errResult
	}

	shared, err := t.Vectors.Query(ctx, "pension_knowledge", args.Query, 2, nil)
	if err != nil {
		return errorResult(fmt.Sprintf("shared retrieval failed: %v", err))
	}
	private, err := t.Vectors.Query(ctx, fmt.Sprintf("user_%d_docs", userID), args.Query, 3, nil)
	if err != nil {
		return errorResult(fmt.Sprintf("private retrieval failed: %v", err))
	}

	type hit struct {
		text       string
		similarity float64
		source     string
	}
	var hits []hit
	for i, d := range shared.Documents {
		hits = append(hits, hit{text: d, similarity: shared.Similarity[i], source: "pension_knowledge"})
	}
	for i, d := range private.Documents {
		hits = append(hits, hit{text: d, similarity: private.Similarity[i], source: fmt.Sprintf("user_%d_docs", userID)})
	}

	for i := 0; i < len(hits); i++ {
		for j := i + 1; j < len(hits); j++ {
			if hits[j].similarity > hits[i].similarity {
				hits[i], hits[j] = hits[j], hits[i]
			}
		}
	}

	results := make([]map[string]any, 0, len(hits))
	for i, h := range hits {
		results = append(results, map[string]any{
			"rank":       i + 1,
			"text":       h.text,
			"similarity": h.similarity,
			"source":     h.source,
		})
	}

	return map[string]any{
		"user_id": userID,
		"results": results,
	}
}

func scrubOCRPlaceholders(docs []string) []string {
	out := make([]string, len(docs))
	for i, d := range docs {
		if d == ocrPlaceholder {
			out[i] = "This page appears to be a scanned image; text could not be extracted."
		} else {
			out[i] = d
		}
	}
	return out
}

func mergeStatus(result map[string]any, pdfStatus string) map[string]any {
	result["pdf_status"] = pdfStatus
	return result
}
