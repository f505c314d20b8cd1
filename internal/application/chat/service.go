// Package chat runs the query pipeline behind the chatbot endpoint. Every
// inbound message walks the same ladder: the FAQ fast-path first, then
// keyword intent classification, then the tool router, and only when both
// deterministic stages miss does the query reach the generative backend.
// The classification and routing stages are pure and synchronous; timeouts
// wrap only the external calls.
package chat

import (
	"context"
	"strings"
	"time"

	"github.com/turtacn/MemberPulse-Intelligence/internal/application/analytics"
	"github.com/turtacn/MemberPulse-Intelligence/internal/application/operations"
	"github.com/turtacn/MemberPulse-Intelligence/internal/domain/conversation"
	"github.com/turtacn/MemberPulse-Intelligence/internal/infrastructure/genai"
	"github.com/turtacn/MemberPulse-Intelligence/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/MemberPulse-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MemberPulse-Intelligence/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/MemberPulse-Intelligence/internal/infrastructure/search/milvus"
	"github.com/turtacn/MemberPulse-Intelligence/internal/intelligence/extract"
	"github.com/turtacn/MemberPulse-Intelligence/internal/intelligence/faq"
	"github.com/turtacn/MemberPulse-Intelligence/internal/intelligence/intent"
	"github.com/turtacn/MemberPulse-Intelligence/internal/intelligence/router"
	"github.com/turtacn/MemberPulse-Intelligence/pkg/errors"
	"github.com/turtacn/MemberPulse-Intelligence/pkg/types/common"
)

// ============================================================================
// Request and answer
// ============================================================================

// Source names the pipeline stage that produced an answer.
type Source string

const (
	SourceFAQ           Source = "faq"
	SourceTool          Source = "tool"
	SourceGenerated     Source = "generated"
	SourceClarification Source = "clarification"
)

// Request is one inbound chat message. ConversationID continues an existing
// transcript; when empty, a new conversation is opened for the actor or, for
// anonymous kiosk chats, the session key.
type Request struct {
	Query          string
	ConversationID common.ID
	SessionKey     string
	Actor          operations.Actor
}

// Answer is the handled result of one query.
type Answer struct {
	ConversationID common.ID         `json:"conversation_id"`
	Text           string            `json:"text"`
	Intent         intent.IntentType `json:"intent"`
	Tool           router.Tool       `json:"tool,omitempty"`
	// Topic is the FAQ key or tool name that served the answer, empty for
	// generated ones. It feeds the insights graph.
	Topic          string `json:"topic,omitempty"`
	Source         Source `json:"source"`
	ResponseTimeMS int64  `json:"response_time_ms"`
}

// ============================================================================
// Dependencies
// ============================================================================

// Analytics is the reporting slice of the analytics engine the dispatcher
// calls for analytical tools.
type Analytics interface {
	Revenue(ctx context.Context, period extract.Period) (*analytics.RevenueReport, error)
	MembershipGrowth(ctx context.Context, period extract.Period) (*analytics.GrowthReport, error)
	AttendanceTrends(ctx context.Context, period extract.Period) (*analytics.AttendanceReport, error)
	Retention(ctx context.Context) (*analytics.RetentionReport, error)
	PlanPopularity(ctx context.Context, period extract.Period) (*analytics.PlanPopularityReport, error)
	PaymentCollection(ctx context.Context) (*analytics.PaymentStatusReport, error)
	Comprehensive(ctx context.Context, period extract.Period) (*analytics.ComprehensiveReport, error)
}

// Operations is the slice of the operations service the dispatcher calls,
// including the formatters that render results for the chat widget.
type Operations interface {
	ConfirmPayment(ctx context.Context, actor operations.Actor, reference string) (*operations.ConfirmResult, error)
	GenerateKioskPIN(ctx context.Context, actor operations.Actor, identifier string) (*operations.PINResult, error)
	FindExpiringMemberships(ctx context.Context, actor operations.Actor, days int) ([]operations.ExpiringMembership, error)
	FindInactiveMembers(ctx context.Context, actor operations.Actor, days int) ([]operations.InactiveMember, error)
	PendingPayments(ctx context.Context, actor operations.Actor) ([]operations.PendingPayment, error)
	TodaysCheckins(ctx context.Context, actor operations.Actor) (*operations.CheckinsToday, error)
	SelfProfile(ctx context.Context, memberID common.ID) (*operations.MemberProfile, error)
	LookupMemberByName(ctx context.Context, actor operations.Actor, name string) (*operations.MemberProfile, error)
	LookupMemberByEmail(ctx context.Context, actor operations.Actor, email string) (*operations.MemberProfile, error)

	FormatSelfInfo(p *operations.MemberProfile) string
	FormatStaffMemberProfile(p *operations.MemberProfile) string
	FormatMembershipDuration(p *operations.MemberProfile) string
}

// ContextStore caches the rolling context window per conversation so the
// generative path does not replay the whole transcript. The Redis cache
// facade satisfies it.
type ContextStore interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// Retriever finds corpus snippets near a query embedding for prompt
// augmentation.
type Retriever interface {
	Search(ctx context.Context, vector []float32, topK int, kind string) ([]milvus.CorpusHit, error)
}

// Events publishes the per-query telemetry event.
type Events interface {
	PublishChatHandled(ctx context.Context, p kafka.ChatQueryHandledPayload) error
}

// ============================================================================
// Service
// ============================================================================

// Config holds pipeline tuning. Zero values take the defaults below.
type Config struct {
	MaxQueryLength  int
	ToolTimeout     time.Duration
	GenerateTimeout time.Duration
	ContextTTL      time.Duration
	ContextTurns    int
	RetrievalTopK   int
}

const (
	defaultMaxQueryLength  = 500
	defaultToolTimeout     = 5 * time.Second
	defaultGenerateTimeout = 20 * time.Second
	defaultContextTTL      = 30 * time.Minute
	defaultContextTurns    = 5
	defaultRetrievalTopK   = 3
)

func (c *Config) applyDefaults() {
	if c.MaxQueryLength <= 0 {
		c.MaxQueryLength = defaultMaxQueryLength
	}
	if c.ToolTimeout <= 0 {
		c.ToolTimeout = defaultToolTimeout
	}
	if c.GenerateTimeout <= 0 {
		c.GenerateTimeout = defaultGenerateTimeout
	}
	if c.ContextTTL <= 0 {
		c.ContextTTL = defaultContextTTL
	}
	if c.ContextTurns <= 0 {
		c.ContextTurns = defaultContextTurns
	}
	if c.RetrievalTopK <= 0 {
		c.RetrievalTopK = defaultRetrievalTopK
	}
}

// Service runs the chat pipeline over the wired collaborators.
type Service struct {
	corpus        *faq.Provider
	classifier    *intent.Classifier
	router        *router.Router
	conversations conversation.ConversationRepository
	ops           Operations
	reports       Analytics

	generator genai.Provider
	retriever Retriever
	contexts  ContextStore
	events    Events
	metrics   *prometheus.AppMetrics

	config Config
	logger logging.Logger
	clock  func() time.Time
}

// Option customizes a Service.
type Option func(*Service)

// WithGenerator wires the generative backend for double-miss queries.
func WithGenerator(p genai.Provider) Option {
	return func(s *Service) { s.generator = p }
}

// WithRetriever wires semantic corpus retrieval into the generative prompt.
func WithRetriever(r Retriever) Option {
	return func(s *Service) { s.retriever = r }
}

// WithContextStore wires the conversation context cache.
func WithContextStore(c ContextStore) Option {
	return func(s *Service) { s.contexts = c }
}

// WithEvents wires query telemetry publishing.
func WithEvents(e Events) Option {
	return func(s *Service) { s.events = e }
}

// WithMetrics wires the application metric series.
func WithMetrics(m *prometheus.AppMetrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithConfig overrides the pipeline tuning.
func WithConfig(cfg Config) Option {
	return func(s *Service) { s.config = cfg }
}

// WithLogger sets the service logger.
func WithLogger(l logging.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides the time source. Test hook.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// NewService wires the chat pipeline. The FAQ provider, classifier, router,
// conversation repository, and the two dispatch targets are mandatory;
// everything else is optional and degrades gracefully when absent.
func NewService(
	corpus *faq.Provider,
	classifier *intent.Classifier,
	rt *router.Router,
	conversations conversation.ConversationRepository,
	ops Operations,
	reports Analytics,
	opts ...Option,
) *Service {
	s := &Service{
		corpus:        corpus,
		classifier:    classifier,
		router:        rt,
		conversations: conversations,
		ops:           ops,
		reports:       reports,
		logger:        logging.Default().Named("chat"),
		clock:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.config.applyDefaults()
	return s
}

// ============================================================================
// Pipeline
// ============================================================================

// fallbackAnswer is returned when the generative backend is unavailable or
// fails; the turn still completes and is persisted.
const fallbackAnswer = "I'm having trouble answering that right now. " +
	"Please try again in a moment, or ask the front desk for help."

// Handle runs one query through the pipeline and persists the turn.
func (s *Service) Handle(ctx context.Context, req Request) (*Answer, error) {
	start := s.clock()

	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, errors.New(errors.ErrCodeEmptyQuery, "query must not be empty")
	}
	if len(query) > s.config.MaxQueryLength {
		return nil, errors.Newf(errors.ErrCodeEmptyQuery,
			"query exceeds %d characters", s.config.MaxQueryLength)
	}

	conv, created, err := s.loadConversation(ctx, req)
	if err != nil {
		return nil, err
	}

	ans := s.answer(ctx, req, conv, query)
	ans.ConversationID = conv.ID
	ans.ResponseTimeMS = s.clock().Sub(start).Milliseconds()

	if err := s.persistTurn(ctx, conv, created, query, ans); err != nil {
		return nil, err
	}
	s.rememberContext(ctx, conv)
	s.publishHandled(ctx, req, ans)

	if s.metrics != nil {
		prometheus.RecordChatQuery(s.metrics, string(ans.Source), ans.Intent.String(),
			time.Duration(ans.ResponseTimeMS)*time.Millisecond)
	}
	s.logger.Info("query handled",
		logging.String("conversation_id", conv.ID.String()),
		logging.String("intent", ans.Intent.String()),
		logging.String("source", string(ans.Source)),
		logging.Int64("response_time_ms", ans.ResponseTimeMS))
	return ans, nil
}

// answer walks the fallback ladder: FAQ, then tools, then generation.
func (s *Service) answer(ctx context.Context, req Request, conv *conversation.Conversation, query string) *Answer {
	// FAQ fast-path is unconditional and first.
	if m, ok := s.corpus.Current().BestMatch(query); ok {
		if s.metrics != nil {
			prometheus.RecordFAQLookup(s.metrics, true)
		}
		return &Answer{
			Text:   m.Answer,
			Intent: intent.IntentInformational,
			Topic:  m.Key,
			Source: SourceFAQ,
		}
	}
	if s.metrics != nil {
		prometheus.RecordFAQLookup(s.metrics, false)
	}

	res := s.classifier.Classify(query)
	if s.metrics != nil {
		prometheus.RecordIntentMatch(s.metrics, res.Intent.String(), "keyword")
	}

	if res.Intent.RoutesToTools() {
		if d := s.router.Route(query); d.Matched {
			return s.handleTool(ctx, req, res.Intent, d)
		}
	}

	return s.generate(ctx, req, conv, res.Intent, query)
}

// handleTool executes a matched routing decision: clarification prompts and
// permission denials are answered directly, everything else dispatches.
func (s *Service) handleTool(ctx context.Context, req Request, it intent.IntentType, d router.Decision) *Answer {
	ans := &Answer{
		Intent: it,
		Tool:   d.Tool,
		Topic:  d.Tool.String(),
		Source: SourceTool,
	}

	if d.Clarification != "" {
		ans.Text = d.Clarification
		ans.Source = SourceClarification
		return ans
	}

	if s.metrics != nil {
		prometheus.RecordRouteMatch(s.metrics, d.Tool.String())
	}

	if !req.Actor.Role.AtLeast(d.Tool.MinRole()) {
		ans.Text = operations.FormatResult("", errors.PermissionDenied(
			"you do not have permission to use this feature"))
		return ans
	}

	toolCtx, cancel := context.WithTimeout(ctx, s.config.ToolTimeout)
	defer cancel()

	text, err := s.dispatch(toolCtx, req.Actor, d)
	if err != nil {
		s.logger.Warn("tool dispatch failed",
			logging.String("tool", d.Tool.String()),
			logging.Err(err))
		ans.Text = operations.FormatResult("", err)
		return ans
	}
	ans.Text = text
	return ans
}

// ============================================================================
// Generative fallback
// ============================================================================

// generate phrases an answer with the language backend, sending only the
// intent's context window and, for informational queries, retrieved corpus
// snippets. Failures fall back to a fixed answer rather than an error: a
// chat turn always completes.
func (s *Service) generate(ctx context.Context, req Request, conv *conversation.Conversation, it intent.IntentType, query string) *Answer {
	ans := &Answer{Intent: it, Source: SourceGenerated}
	if s.generator == nil {
		ans.Text = fallbackAnswer
		return ans
	}

	genCtx, cancel := context.WithTimeout(ctx, s.config.GenerateTimeout)
	defer cancel()

	greq := genai.ChatRequest{
		SystemPrompt: s.systemPrompt(genCtx, req, it, query),
	}
	for _, t := range s.contextWindow(genCtx, conv, it.ContextWindow()) {
		greq.Messages = append(greq.Messages, genai.ChatMessage{Role: t.Role, Content: t.Content})
	}
	greq.Messages = append(greq.Messages, genai.ChatMessage{Role: genai.RoleUser, Content: query})

	start := s.clock()
	resp, err := s.generator.Chat(genCtx, greq)
	if s.metrics != nil {
		in, out := 0, 0
		model := s.generator.Name()
		if resp != nil {
			in, out, model = resp.InputTokens, resp.OutputTokens, resp.Model
		}
		prometheus.RecordLLMCall(s.metrics, model, "chat", err == nil, s.clock().Sub(start), in, out)
	}
	if err != nil {
		s.logger.Warn("generation failed", logging.Err(err))
		ans.Text = fallbackAnswer
		return ans
	}

	ans.Text = resp.Content
	return ans
}

// systemPrompt builds the reduced per-intent system context. Analytical and
// operational queries get a one-liner; informational ones get the retrieval
// snippets when the vector store is wired.
func (s *Service) systemPrompt(ctx context.Context, req Request, it intent.IntentType, query string) string {
	var b strings.Builder

	switch it {
	case intent.IntentAnalytical:
		b.WriteString("You are the MemberPulse assistant for a fitness club. Answer briefly and concisely.")
	case intent.IntentOperational:
		b.WriteString("You are the MemberPulse assistant for a fitness club. Provide clear, direct answers.")
	case intent.IntentMemberLookup:
		b.WriteString("You are the MemberPulse assistant for a fitness club.")
		if req.Actor.Name != "" {
			b.WriteString(" The current user is " + req.Actor.Name + " (" + req.Actor.Role.String() + ").")
		}
	default:
		b.WriteString("You are the MemberPulse assistant for a fitness club. " +
			"Help members and visitors with membership plans, payments, schedules, and club facilities. " +
			"Keep answers short and friendly.")
		for i, snippet := range s.retrieve(ctx, query) {
			if i == 0 {
				b.WriteString("\n\nReference notes:")
			}
			b.WriteString("\n- " + snippet)
		}
	}

	if req.Actor.Role.AtLeast(common.RoleStaff) {
		b.WriteString("\nYou can help with analytics, operations, and member management.")
	}
	return b.String()
}

// retrieve embeds the query and pulls the nearest corpus snippets.
// Best-effort: retrieval problems only shrink the prompt.
func (s *Service) retrieve(ctx context.Context, query string) []string {
	if s.retriever == nil || s.generator == nil {
		return nil
	}
	vectors, err := s.generator.Embed(ctx, []string{query})
	if err != nil || len(vectors) == 0 {
		return nil
	}
	hits, err := s.retriever.Search(ctx, vectors[0], s.config.RetrievalTopK, "")
	if err != nil {
		s.logger.Warn("corpus retrieval failed", logging.Err(err))
		return nil
	}
	snippets := make([]string, 0, len(hits))
	for _, h := range hits {
		if h.Text != "" {
			snippets = append(snippets, h.Text)
		}
	}
	return snippets
}

// ============================================================================
// Conversations and context windows
// ============================================================================

// loadConversation resumes the requested transcript or opens a new one.
// Lookup goes through the owner-scoped queries, so a guessed ID never
// resumes someone else's conversation.
func (s *Service) loadConversation(ctx context.Context, req Request) (*conversation.Conversation, bool, error) {
	if req.ConversationID != "" {
		var (
			conv *conversation.Conversation
			err  error
		)
		switch {
		case req.Actor.ID != "":
			conv, err = s.conversations.GetForMember(ctx, req.ConversationID, req.Actor.ID)
		case req.SessionKey != "":
			conv, err = s.conversations.GetForSession(ctx, req.ConversationID, req.SessionKey)
		default:
			err = errors.New(errors.ErrCodeConversationNotFound, "conversation not found")
		}
		if err != nil {
			if errors.IsNotFound(err) || errors.IsCode(err, errors.ErrCodeConversationNotFound) {
				return nil, false, errors.New(errors.ErrCodeConversationNotFound, "conversation not found")
			}
			return nil, false, errors.Wrap(err, errors.ErrCodeInternal, "loading conversation")
		}
		return conv, false, nil
	}

	var memberID *common.ID
	if req.Actor.ID != "" {
		id := req.Actor.ID
		memberID = &id
	}
	model := ""
	if s.generator != nil {
		model = s.generator.Name()
	}
	conv, err := conversation.New(memberID, req.SessionKey, model)
	if err != nil {
		return nil, false, err
	}
	return conv, true, nil
}

// persistTurn writes the user and assistant messages, creating the
// conversation first when this is its opening turn.
func (s *Service) persistTurn(ctx context.Context, conv *conversation.Conversation, created bool, query string, ans *Answer) error {
	if created {
		if err := s.conversations.Create(ctx, conv); err != nil {
			return errors.Wrap(err, errors.ErrCodeInternal, "creating conversation")
		}
	}

	userMsg, err := conv.Append(conversation.RoleUser, query, nil)
	if err != nil {
		return err
	}
	if err := s.conversations.AppendMessage(ctx, conv.ID, userMsg); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "saving user message")
	}

	rt := ans.ResponseTimeMS
	botMsg, err := conv.Append(conversation.RoleAssistant, ans.Text, &rt)
	if err != nil {
		return err
	}
	if err := s.conversations.AppendMessage(ctx, conv.ID, botMsg); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "saving assistant message")
	}

	if created && conv.Title != "" {
		if err := s.conversations.SetTitle(ctx, conv.ID, conv.Title); err != nil {
			s.logger.Warn("setting conversation title failed", logging.Err(err))
		}
	}
	return nil
}

// cachedTurn is the shape context windows are cached in.
type cachedTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func contextKey(id common.ID) string {
	return "chat:ctx:" + id.String()
}

// contextWindow returns the last n prior turns, from the cache when
// possible, otherwise from the loaded transcript.
func (s *Service) contextWindow(ctx context.Context, conv *conversation.Conversation, n int) []cachedTurn {
	if n <= 0 {
		return nil
	}
	if s.contexts != nil {
		var turns []cachedTurn
		if err := s.contexts.Get(ctx, contextKey(conv.ID), &turns); err == nil && len(turns) > 0 {
			if s.metrics != nil {
				prometheus.RecordCacheAccess(s.metrics, "chat_context", true)
			}
			if len(turns) > n {
				turns = turns[len(turns)-n:]
			}
			return turns
		}
		if s.metrics != nil {
			prometheus.RecordCacheAccess(s.metrics, "chat_context", false)
		}
	}

	history := conv.History(n)
	turns := make([]cachedTurn, 0, len(history))
	for _, m := range history {
		turns = append(turns, cachedTurn{Role: m.Role.String(), Content: m.Content})
	}
	return turns
}

// rememberContext refreshes the cached window with the transcript tail
// after a completed turn. Best-effort.
func (s *Service) rememberContext(ctx context.Context, conv *conversation.Conversation) {
	if s.contexts == nil {
		return
	}
	history := conv.History(s.config.ContextTurns)
	turns := make([]cachedTurn, 0, len(history))
	for _, m := range history {
		turns = append(turns, cachedTurn{Role: m.Role.String(), Content: m.Content})
	}
	if err := s.contexts.Set(ctx, contextKey(conv.ID), turns, s.config.ContextTTL); err != nil {
		s.logger.Warn("context cache write failed", logging.Err(err))
	}
}

// publishHandled emits the per-query telemetry event. Best-effort: the
// answer is already committed.
func (s *Service) publishHandled(ctx context.Context, req Request, ans *Answer) {
	if s.events == nil {
		return
	}
	payload := kafka.ChatQueryHandledPayload{
		ConversationID: ans.ConversationID.String(),
		MemberID:       req.Actor.ID.String(),
		SessionKey:     req.SessionKey,
		Role:           string(req.Actor.Role),
		Intent:         ans.Intent.String(),
		Tool:           ans.Tool.String(),
		Topic:          ans.Topic,
		Outcome:        string(ans.Source),
		Query:          strings.TrimSpace(req.Query),
		Answer:         ans.Text,
		ResponseTimeMS: ans.ResponseTimeMS,
		HandledAt:      s.clock().UTC(),
	}
	if err := s.events.PublishChatHandled(ctx, payload); err != nil {
		s.logger.Warn("publishing chat event failed", logging.Err(err))
	}
}
