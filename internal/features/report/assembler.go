// Package report assembles the full rug-risk report for a token:
// on-chain mint state, holder concentration, market summary, LP risk,
// holder-linkage clusters, cross-holdings and rug flags. Optional
// sub-components degrade to neutral values instead of failing the
// report; only an exhausted RPC pool or an unknown mint aborts.
package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"phoenix-analyzer/internal/clients_api/dexscreener"
	"phoenix-analyzer/internal/clients_api/solanarpc"
	"phoenix-analyzer/internal/features/format"
	"phoenix-analyzer/internal/features/holders"
	"phoenix-analyzer/internal/features/linkage"
	"phoenix-analyzer/internal/features/lprisk"
	"phoenix-analyzer/internal/infra/cache"
	logging "phoenix-analyzer/internal/infra/log"

	"go.uber.org/zap"
)

// ErrNotSPLToken means the identifier resolved to an account that is
// not owned by the SPL token program.
var ErrNotSPLToken = errors.New("not an SPL token")

// Status is the explicit tri-state of an optional sub-component, so
// the merge logic is exhaustive instead of falling through on empties.
type Status string

const (
	StatusComputed    Status = "computed"
	StatusDegraded    Status = "degraded"
	StatusUnavailable Status = "unavailable"
)

type SubResult struct {
	Status Status `json:"status"`
	Reason string `json:"reason,omitempty"`
}

type Report struct {
	Mint        string    `json:"mint"`
	GeneratedAt time.Time `json:"generatedAt"`

	Decimals int     `json:"decimals"`
	SupplyUI float64 `json:"supplyUi"`

	Market        *dexscreener.MarketSummary `json:"market,omitempty"`
	MarketState   SubResult                  `json:"marketState"`
	LpRisk        lprisk.Assessment          `json:"lpRisk"`
	Safety        holders.Safety             `json:"safety"`
	TopHolders    []solanarpc.HolderAccount  `json:"topHolders"`
	Linkage       linkage.Risk               `json:"linkage"`
	LinkageState  SubResult                  `json:"linkageState"`
	CrossHoldings []linkage.CrossHolding     `json:"crossHoldings"`
	CrossState    SubResult                  `json:"crossState"`
	RugFlags      []string                   `json:"rugFlags"`
}

// ChainClient is the slice of the RPC pool the assembler consumes.
type ChainClient interface {
	GetAccountInfo(ctx context.Context, mint string) (*solanarpc.MintAccount, error)
	GetTokenLargestAccounts(ctx context.Context, mint string) ([]solanarpc.HolderAccount, error)
	GetSignaturesForAddress(ctx context.Context, address string, limit int) ([]solanarpc.SignatureInfo, error)
	GetTransaction(ctx context.Context, signature string) (*solanarpc.ParsedTransaction, error)
	GetSlot(ctx context.Context) (uint64, error)
}

// MarketClient is the slice of the market-data source the assembler consumes.
type MarketClient interface {
	FetchSummary(ctx context.Context, mint string) (*dexscreener.MarketSummary, error)
}

// Service owns the report pipeline and its cache. One report request
// is a single sequential computation: holders, market, linkage in that
// order, since the graph depends on the holder list.
type Service struct {
	chain   ChainClient
	market  MarketClient
	fetcher linkage.TxFetcher
	cache   *cache.Cache[*Report]
	now     func() time.Time
}

func NewService(chain ChainClient, market MarketClient, fetcher linkage.TxFetcher, reportCache *cache.Cache[*Report]) *Service {
	return &Service{
		chain:   chain,
		market:  market,
		fetcher: fetcher,
		cache:   reportCache,
		now:     time.Now,
	}
}

// CurrentSlot is a thin liveness probe through the endpoint pool.
func (s *Service) CurrentSlot(ctx context.Context) (uint64, error) {
	return s.chain.GetSlot(ctx)
}

// Assess builds (or returns the cached) full report for a mint.
// Idempotent within the cache TTL.
func (s *Service) Assess(ctx context.Context, mint string) (*Report, error) {
	if cached, ok := s.cache.Get(cache.KindDetail, mint); ok {
		logging.LogDebug("Report served from cache", zap.String("mint", mint))
		return cached, nil
	}

	account, err := s.chain.GetAccountInfo(ctx, mint)
	if err != nil {
		return nil, fmt.Errorf("account lookup for %s failed: %w", mint, err)
	}
	if account.Program != solanarpc.TokenProgramName {
		return nil, fmt.Errorf("%w: program is %q", ErrNotSPLToken, account.Program)
	}

	largest, err := s.chain.GetTokenLargestAccounts(ctx, mint)
	if err != nil {
		if errors.Is(err, solanarpc.ErrEndpointsExhausted) {
			return nil, err
		}
		logging.LogWarn("Largest-accounts fetch failed, continuing without holder data",
			zap.String("mint", mint), zap.Error(err))
		largest = nil
	}

	rep := &Report{
		Mint:        mint,
		GeneratedAt: s.now(),
		Decimals:    account.Decimals,
		SupplyUI:    account.SupplyUI(),
		Safety: holders.Analyze(largest,
			account.MintAuthority != nil,
			account.FreezeAuthority != nil),
		TopHolders: largest,
	}

	rep.Market, rep.MarketState = s.fetchMarket(ctx, mint)
	rep.LpRisk = lprisk.Assess(rep.Market, s.now())
	if rep.MarketState.Status == StatusDegraded {
		rep.LpRisk.Reasons = append(rep.LpRisk.Reasons, "ℹ️ Market data unavailable, score is neutral.")
	}

	rep.Linkage, rep.LinkageState = s.assessLinkage(ctx, largest)
	rep.CrossHoldings, rep.CrossState = s.sampleCrossHoldings(ctx, mint, largest)
	rep.RugFlags = rugFlags(rep)

	s.cache.Put(cache.KindDetail, mint, rep)
	logging.LogSuccess("Report assembled",
		zap.String("mint", mint),
		zap.Int("safety_score", rep.Safety.Score),
		zap.Int("lp_score", rep.LpRisk.Score),
		zap.Int("cluster_score", rep.Linkage.Score))
	return rep, nil
}

func (s *Service) fetchMarket(ctx context.Context, mint string) (*dexscreener.MarketSummary, SubResult) {
	summary, err := s.market.FetchSummary(ctx, mint)
	if err != nil {
		logging.LogWarn("Market fetch failed", zap.String("mint", mint), zap.Error(err))
		return nil, SubResult{Status: StatusDegraded, Reason: err.Error()}
	}
	return summary, SubResult{Status: StatusComputed}
}

func (s *Service) assessLinkage(ctx context.Context, largest []solanarpc.HolderAccount) (linkage.Risk, SubResult) {
	if s.fetcher == nil || !s.fetcher.HasKey() {
		return linkage.AssessClusters(ctx, s.fetcher, largest),
			SubResult{Status: StatusUnavailable, Reason: "indexing service key not configured"}
	}
	if len(largest) == 0 {
		return linkage.AssessClusters(ctx, s.fetcher, largest),
			SubResult{Status: StatusDegraded, Reason: "no holder data"}
	}
	return linkage.AssessClusters(ctx, s.fetcher, largest), SubResult{Status: StatusComputed}
}

func (s *Service) sampleCrossHoldings(ctx context.Context, mint string, largest []solanarpc.HolderAccount) ([]linkage.CrossHolding, SubResult) {
	if len(largest) == 0 {
		return nil, SubResult{Status: StatusDegraded, Reason: "no holder data"}
	}
	samples := linkage.SampleCrossHoldings(ctx, s.fetcher, s.chain, mint, largest)
	if s.fetcher == nil || !s.fetcher.HasKey() {
		return samples, SubResult{Status: StatusUnavailable, Reason: "indexing service key not configured"}
	}
	return samples, SubResult{Status: StatusComputed}
}

const lowLiquidityFlagUSD = 5_000

func rugFlags(rep *Report) []string {
	var flags []string
	if rep.Safety.MintAuthorityPresent {
		flags = append(flags, "🚩 Mint authority still active")
	}
	if rep.Safety.FreezeAuthorityPresent {
		flags = append(flags, "🚩 Freeze authority still active")
	}
	switch {
	case rep.Safety.Top1Pct >= 50:
		flags = append(flags, fmt.Sprintf("🚩 Extreme concentration: Top1 %.1f%%", rep.Safety.Top1Pct))
	case rep.Safety.Top1Pct >= 30:
		flags = append(flags, fmt.Sprintf("🚩 High concentration: Top1 %.1f%%", rep.Safety.Top1Pct))
	}
	if rep.Market != nil && rep.Market.LiquidityUSD < lowLiquidityFlagUSD {
		flags = append(flags, fmt.Sprintf("🚩 Very low liquidity (%s)", format.USD(rep.Market.LiquidityUSD)))
	}
	if rep.Market == nil || (rep.Market.Website == "" && len(rep.Market.Socials) == 0) {
		flags = append(flags, "🚩 No website or socials found")
	}
	return flags
}
