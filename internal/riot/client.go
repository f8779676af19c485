// Package riot adapts the Riot Games API into the service's player and
// performance types.
package riot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/riftforge/rift-balancer/internal/cache"
	apperrors "github.com/riftforge/rift-balancer/internal/errors"
	"github.com/riftforge/rift-balancer/internal/monitoring"
	"github.com/riftforge/rift-balancer/internal/resilience"
	"github.com/riftforge/rift-balancer/internal/scoring"
	"github.com/riftforge/rift-balancer/internal/types"
)

const (
	// ServiceName keys the circuit breaker and health registry entries.
	ServiceName = "riot-api"

	dataDragonBase = "https://ddragon.leagueoflegends.com"

	defaultMatchCount = 5
	topMasteryCount   = 3
)

// platformCandidates lists the platform hosts tried in order for each
// regional routing cluster.
var platformCandidates = map[string][]string{
	"americas": {"na1", "br1", "la1", "la2"},
	"europe":   {"euw1", "eun1", "tr1", "ru"},
	"asia":     {"kr", "jp1", "oc1"},
}

// Client calls the Riot API through the pooled, circuit-broken HTTP client
// while honoring development key rate limits.
type Client struct {
	apiKey  string
	cluster string

	pool      *resilience.ClientPool
	metrics   *monitoring.Metrics
	logger    *monitoring.Logger
	health    *resilience.HealthRegistry
	champions *cache.ChampionCache

	// Development keys allow 20 req/s and 100 req/2min; both limiters sit
	// slightly under those ceilings.
	perSecond *rate.Limiter
	perWindow *rate.Limiter
}

// NewClient wires the adapter. cluster must be one of americas, europe, asia.
func NewClient(apiKey, cluster string, metrics *monitoring.Metrics, logger *monitoring.Logger, health *resilience.HealthRegistry) *Client {
	breaker := resilience.GetCircuitBreaker(ServiceName, resilience.CircuitConfig{
		FailureThreshold: 5,
		RecoveryTimeout:  30 * time.Second,
	})
	health.Register(ServiceName)

	return &Client{
		apiKey:    apiKey,
		cluster:   cluster,
		pool:      resilience.NewClientPool(10, 20, 90*time.Second, breaker),
		metrics:   metrics,
		logger:    logger,
		health:    health,
		champions: cache.NewChampionCache(24*time.Hour, nil),
		perSecond: rate.NewLimiter(15, 15),
		perWindow: rate.NewLimiter(rate.Every(2*time.Minute/90), 90),
	}
}

// Cluster returns the configured regional routing value.
func (c *Client) Cluster() string {
	return c.cluster
}

// PoolStats exposes the HTTP pool for the diagnostics endpoint.
func (c *Client) PoolStats() map[string]any {
	return c.pool.Stats()
}

// Close releases the HTTP pool.
func (c *Client) Close() error {
	return c.pool.Close()
}

func (c *Client) wait(ctx context.Context) error {
	if err := c.perSecond.Wait(ctx); err != nil {
		return err
	}
	return c.perWindow.Wait(ctx)
}

func (c *Client) getJSON(ctx context.Context, endpoint, rawURL string, out any) error {
	if err := c.wait(ctx); err != nil {
		return err
	}
	c.metrics.IncrementRiotCalls()

	start := time.Now()
	resp, err := resilience.RetryHTTP(ctx, resilience.DefaultRetryConfig(), func() (*http.Response, error) {
		return c.pool.Do(ctx, http.MethodGet, rawURL, map[string]string{"X-Riot-Token": c.apiKey})
	})
	if err != nil {
		// An exhausted retry still carries the last response (body already
		// closed) so upstream throttling keeps its rate-limit mapping.
		if resp != nil {
			c.logger.RiotAPILogger(endpoint, resp.StatusCode, time.Since(start), false)
			if resp.StatusCode == http.StatusTooManyRequests {
				c.health.ReportFailure(ServiceName, fmt.Errorf("upstream rate limited"))
				return apperrors.NewRateLimitError(resp.Header.Get("Retry-After"))
			}
			c.health.ReportFailure(ServiceName, err)
			return apperrors.NewExternalAPIError("riot", fmt.Errorf("%s returned status %d after retries", endpoint, resp.StatusCode))
		}
		c.health.ReportFailure(ServiceName, err)
		c.logger.RiotAPILogger(endpoint, 0, time.Since(start), false)
		return apperrors.NewNetworkError(fmt.Sprintf("riot %s request failed", endpoint), err)
	}
	defer resp.Body.Close()

	c.logger.RiotAPILogger(endpoint, resp.StatusCode, time.Since(start), resp.StatusCode < 400)

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return apperrors.NewNotFoundError(endpoint, rawURL)
	case resp.StatusCode == http.StatusTooManyRequests:
		c.health.ReportFailure(ServiceName, fmt.Errorf("upstream rate limited"))
		return apperrors.NewRateLimitError(resp.Header.Get("Retry-After"))
	case resp.StatusCode >= 400:
		c.health.ReportFailure(ServiceName, fmt.Errorf("status %d", resp.StatusCode))
		return apperrors.NewExternalAPIError("riot", fmt.Errorf("%s returned status %d", endpoint, resp.StatusCode))
	}

	c.health.ReportSuccess(ServiceName)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperrors.NewExternalAPIError("riot", err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return apperrors.NewExternalAPIError("riot", apperrors.WrapError(err, "decoding %s response", endpoint))
	}
	return nil
}

func regionalURL(cluster, path string) string {
	return fmt.Sprintf("https://%s.api.riotgames.com%s", cluster, path)
}

// AccountByRiotID resolves a game name + tag line to an account.
func (c *Client) AccountByRiotID(ctx context.Context, gameName, tagLine string) (*Account, error) {
	path := fmt.Sprintf("/riot/account/v1/accounts/by-riot-id/%s/%s",
		url.PathEscape(gameName), url.PathEscape(tagLine))

	var account Account
	if err := c.getJSON(ctx, "account-by-riot-id", regionalURL(c.cluster, path), &account); err != nil {
		return nil, err
	}
	return &account, nil
}

// SummonerByPUUID tries each platform in the cluster until one knows the
// puuid, returning the summoner and the platform that resolved it.
func (c *Client) SummonerByPUUID(ctx context.Context, puuid string) (*Summoner, string, error) {
	var lastErr error
	for _, platform := range platformCandidates[c.cluster] {
		path := fmt.Sprintf("/lol/summoner/v4/summoners/by-puuid/%s", url.PathEscape(puuid))

		var summoner Summoner
		err := c.getJSON(ctx, "summoner-by-puuid", regionalURL(platform, path), &summoner)
		if err == nil {
			return &summoner, platform, nil
		}
		lastErr = err

		var appErr *apperrors.AppError
		if !errors.As(err, &appErr) || appErr.Category != apperrors.CategoryNotFound {
			return nil, "", err
		}
	}
	if lastErr == nil {
		lastErr = apperrors.NewConfigurationError(fmt.Sprintf("unknown riot cluster %q", c.cluster), nil)
	}
	return nil, "", lastErr
}

// LeagueEntriesByPUUID fetches ranked entries on the given platform.
func (c *Client) LeagueEntriesByPUUID(ctx context.Context, platform, puuid string) ([]LeagueEntry, error) {
	path := fmt.Sprintf("/lol/league/v4/entries/by-puuid/%s", url.PathEscape(puuid))

	var entries []LeagueEntry
	if err := c.getJSON(ctx, "league-by-puuid", regionalURL(platform, path), &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// RecentMatchIDs lists the player's most recent match ids.
func (c *Client) RecentMatchIDs(ctx context.Context, puuid string, count int) ([]string, error) {
	if count <= 0 {
		count = defaultMatchCount
	}
	path := fmt.Sprintf("/lol/match/v5/matches/by-puuid/%s/ids?start=0&count=%d",
		url.PathEscape(puuid), count)

	var ids []string
	if err := c.getJSON(ctx, "match-ids", regionalURL(c.cluster, path), &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// MatchDetails fetches one full match.
func (c *Client) MatchDetails(ctx context.Context, matchID string) (*Match, error) {
	path := fmt.Sprintf("/lol/match/v5/matches/%s", url.PathEscape(matchID))

	var match Match
	if err := c.getJSON(ctx, "match-details", regionalURL(c.cluster, path), &match); err != nil {
		return nil, err
	}
	return &match, nil
}

// TopMasteries fetches the player's highest champion masteries on a platform.
func (c *Client) TopMasteries(ctx context.Context, platform, puuid string) ([]Mastery, error) {
	path := fmt.Sprintf("/lol/champion-mastery/v4/champion-masteries/by-puuid/%s/top?count=%d",
		url.PathEscape(puuid), topMasteryCount)

	var masteries []Mastery
	if err := c.getJSON(ctx, "champion-mastery", regionalURL(platform, path), &masteries); err != nil {
		return nil, err
	}
	return masteries, nil
}

// SearchPlayer runs the full profile lookup: account, summoner, solo-queue
// rank and top masteries, producing a draft-ready player.
func (c *Client) SearchPlayer(ctx context.Context, gameName, tagLine string) (*types.Player, error) {
	account, err := c.AccountByRiotID(ctx, gameName, tagLine)
	if err != nil {
		return nil, err
	}

	summoner, platform, err := c.SummonerByPUUID(ctx, account.PUUID)
	if err != nil {
		return nil, err
	}

	player := &types.Player{
		ID:            account.PUUID,
		Name:          account.GameName,
		Tag:           account.TagLine,
		Region:        platform,
		ProfileIconID: summoner.ProfileIconID,
	}

	entries, err := c.LeagueEntriesByPUUID(ctx, platform, account.PUUID)
	if err != nil {
		return nil, err
	}
	applySoloQueueRank(player, entries)

	// Masteries are decoration; a failed lookup does not sink the search.
	if masteries, err := c.TopMasteries(ctx, platform, account.PUUID); err == nil {
		player.MostChampions = c.masteriesToChampions(ctx, masteries)
	} else {
		slog.Warn("champion mastery lookup failed", "puuid", account.PUUID, "error", err)
	}

	return player, nil
}

func applySoloQueueRank(player *types.Player, entries []LeagueEntry) {
	for _, entry := range entries {
		if entry.QueueType != soloQueue {
			continue
		}
		player.Tier = entry.Tier
		player.Division = Division(entry.Rank)
		player.LeaguePoints = entry.LeaguePoints
		player.Rating = TierRating(entry.Tier, entry.Rank, entry.LeaguePoints)
		return
	}
	player.Tier = "IRON"
	player.Division = Division("IV")
	player.Rating = 0
	player.Unranked = true
}

func (c *Client) masteriesToChampions(ctx context.Context, masteries []Mastery) []types.ChampionMastery {
	if c.champions.Stale() {
		if err := c.refreshChampions(ctx); err != nil {
			slog.Warn("champion table refresh failed", "error", err)
		}
	}

	out := make([]types.ChampionMastery, 0, len(masteries))
	for _, m := range masteries {
		name, _ := c.champions.Name(m.ChampionID)
		out = append(out, types.ChampionMastery{
			ChampionID:     m.ChampionID,
			ChampionName:   name,
			ChampionLevel:  m.ChampionLevel,
			ChampionPoints: m.ChampionPoints,
		})
	}
	return out
}

// refreshChampions pulls the current champion table from Data Dragon.
func (c *Client) refreshChampions(ctx context.Context) error {
	var versions []string
	if err := c.getJSON(ctx, "ddragon-versions", dataDragonBase+"/api/versions.json", &versions); err != nil {
		return err
	}
	if len(versions) == 0 {
		return apperrors.NewExternalAPIError("ddragon", fmt.Errorf("empty version list"))
	}

	var list championListResponse
	championsURL := fmt.Sprintf("%s/cdn/%s/data/en_US/champion.json", dataDragonBase, versions[0])
	if err := c.getJSON(ctx, "ddragon-champions", championsURL, &list); err != nil {
		return err
	}

	names := make(map[int]string, len(list.Data))
	for _, champ := range list.Data {
		id, err := strconv.Atoi(champ.Key)
		if err != nil {
			continue
		}
		names[id] = champ.Name
	}
	c.champions.Replace(names)
	return nil
}

// AnalyzeRecent scores the player's recent matches. Matches the player is
// missing from, and fetches that fail after retries, are skipped rather than
// failing the whole analysis.
func (c *Client) AnalyzeRecent(ctx context.Context, puuid string, count int) ([]types.GamePerformance, error) {
	ids, err := c.RecentMatchIDs(ctx, puuid, count)
	if err != nil {
		return nil, err
	}

	performances := make([]types.GamePerformance, 0, len(ids))
	for _, id := range ids {
		match, err := c.MatchDetails(ctx, id)
		if err != nil {
			slog.Warn("match fetch failed, skipping", "match_id", id, "error", err)
			continue
		}
		perf, ok := PerformanceFromMatch(match, puuid)
		if !ok {
			continue
		}
		c.metrics.IncrementMatchesScored()
		performances = append(performances, *perf)
	}
	return performances, nil
}

// AdjustedRatingFor blends a tier rating with scored performances.
func AdjustedRatingFor(rating float64, performances []types.GamePerformance) float64 {
	scores := make([]float64, 0, len(performances))
	for _, p := range performances {
		scores = append(scores, p.PerformanceScore)
	}
	return scoring.AdjustedRating(rating, scores)
}
