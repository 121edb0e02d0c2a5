package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"botticelli/internal/domain"
	"botticelli/internal/repository"

	"go.uber.org/zap"
)

const (
	maxPersonLen = 64
	maxTextLen   = 1024

	msgNoGame     = "No active game"
	msgActiveGame = "You already have an active botticelli game for this channel"
	msgChanged    = "The game changed while you were acting, check status and try again"
)

// Request identifies who is acting and in which channel
type Request struct {
	Channel string
	User    string
}

// Prompt asks the game creator for a yes/no answer
type Prompt struct {
	Kind   domain.ItemKind
	ID     string
	Footer string
}

// Token returns the button payload for the given answer
func (p *Prompt) Token(yes bool) string {
	return domain.EncodeToken(p.Kind, p.ID, yes)
}

// Result describes what the chat should show after an action
type Result struct {
	Text    string
	Private bool
	Prompt  *Prompt
	// DeleteRef is a previously sent prompt that should be removed
	DeleteRef string
	// Summary is a short status line shown after an answer
	Summary string
	// Conceal asks the transport to remove the command message, it names the secret person
	Conceal bool
}

type action func(ctx context.Context, req Request, params string) (*Result, error)

// round holds what differs between stumps and questions
type round struct {
	kind    domain.ItemKind
	ask     domain.Phase // phase in which the item may be asked
	pending domain.Phase // phase while it waits for an answer
	onYes   domain.Phase
	empty   string
	wrong   string
}

var rounds = map[domain.ItemKind]round{
	domain.KindStump: {
		kind:    domain.KindStump,
		ask:     domain.PhaseStump,
		pending: domain.PhasePendingStump,
		onYes:   domain.PhaseQuestion,
		empty:   "Ya gotta ask a dang stumper!",
		wrong:   "We're asking stumps, not questions!",
	},
	domain.KindQuestion: {
		kind:    domain.KindQuestion,
		ask:     domain.PhaseQuestion,
		pending: domain.PhasePendingQuestion,
		onYes:   domain.PhaseQuestion,
		empty:   "Ya gotta ask a dang question!",
		wrong:   "We're asking questions, not stumps!",
	},
}

// GameService owns every game state transition
type GameService struct {
	repo    repository.GameRepository
	logger  *zap.Logger
	actions map[string]action
}

// NewGameService creates a new game service
func NewGameService(repo repository.GameRepository, logger *zap.Logger) *GameService {
	s := &GameService{
		repo:   repo,
		logger: logger,
	}
	s.actions = map[string]action{
		"status": s.Status,
		"help":   s.Help,
		"ask":    s.Ask,
		"stump":  s.Stump,
		"start":  s.Start,
		"cancel": s.Cancel,
	}
	return s
}

var commandPattern = regexp.MustCompile(`(?s)^(\w+)(.*)$`)

// ParseCommand splits command text into its verb and the free-text rest
func ParseCommand(text string) (verb, params string) {
	m := commandPattern.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return "", ""
	}
	return strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
}

// Dispatch runs the action named by verb
func (s *GameService) Dispatch(ctx context.Context, req Request, verb, params string) (*Result, error) {
	act, ok := s.actions[verb]
	if !ok {
		return nil, domain.Violation("could not recognize command %s", verb)
	}

	s.logger.Info("Dispatching action",
		zap.String("action", verb),
		zap.String("params", params),
		zap.String("channel", req.Channel),
		zap.String("user", req.User),
	)
	return act(ctx, req, params)
}

// Start creates a new game for person in the request's channel
func (s *GameService) Start(ctx context.Context, req Request, person string) (*Result, error) {
	person = strings.TrimSpace(person)
	if person == "" {
		return nil, domain.Violation("Must start botticelli by providing a person!")
	}
	if utf8.RuneCountInString(person) > maxPersonLen {
		return nil, domain.Violation("That name is too long, keep it under %d characters", maxPersonLen)
	}

	letter, err := domain.LetterFor(person)
	if err != nil {
		return nil, domain.Violation("Must start botticelli by providing a person!")
	}

	active, err := s.repo.GetActive(ctx, req.Channel)
	if err != nil {
		return nil, fmt.Errorf("failed to get active game: %w", err)
	}
	if active != nil {
		return nil, domain.Violation(msgActiveGame)
	}

	game := &domain.Game{
		Creator: req.User,
		Letter:  letter,
		Person:  person,
		Channel: req.Channel,
		Phase:   domain.PhaseStump,
	}
	if err := s.repo.CreateGame(ctx, game); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, domain.Violation(msgActiveGame)
		}
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	s.logger.Info("Game started",
		zap.String("game_id", game.ID),
		zap.String("channel", game.Channel),
		zap.String("creator", game.Creator),
		zap.String("letter", letter),
	)

	return &Result{
		Text:    fmt.Sprintf("%s has begun a game of Botticelli for letter %s... Begin!", domain.Bold(req.User), domain.Bold(letter)),
		Conceal: true,
	}, nil
}

// Stump asks a round 1 stumper
func (s *GameService) Stump(ctx context.Context, req Request, text string) (*Result, error) {
	item, game, err := s.askItem(ctx, req, rounds[domain.KindStump], text)
	if err != nil {
		return nil, err
	}

	return &Result{
		Text: fmt.Sprintf("%s asks stumper:\n%s", domain.Bold(req.User), domain.Bold(item.Text)),
		Prompt: &Prompt{
			Kind:   item.Kind,
			ID:     item.ID,
			Footer: fmt.Sprintf("%s, Are you stumped? If not, prove it!", domain.Escape(domain.Mention(game.Creator))),
		},
	}, nil
}

// Ask asks a round 2 yes/no question
func (s *GameService) Ask(ctx context.Context, req Request, text string) (*Result, error) {
	item, game, err := s.askItem(ctx, req, rounds[domain.KindQuestion], text)
	if err != nil {
		return nil, err
	}

	return &Result{
		Text: fmt.Sprintf("%s asks yes/no question for %s:\n%s",
			domain.Bold(req.User), domain.Escape(domain.Mention(game.Creator)), domain.Bold(item.Text)),
		Prompt: &Prompt{
			Kind: item.Kind,
			ID:   item.ID,
		},
	}, nil
}

func checkAsk(game *domain.Game, r round) error {
	if game == nil {
		return domain.Violation(msgNoGame)
	}
	switch game.Phase {
	case r.ask:
		return nil
	case r.pending:
		return domain.Violation("Pending %s needs to be resolved before asking another", r.kind)
	default:
		return domain.Violation(r.wrong)
	}
}

func (s *GameService) askItem(ctx context.Context, req Request, r round, text string) (*domain.Item, *domain.Game, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil, domain.Violation(r.empty)
	}
	if utf8.RuneCountInString(text) > maxTextLen {
		return nil, nil, domain.Violation("That %s is too long, keep it under %d characters", r.kind, maxTextLen)
	}

	game, err := s.repo.GetActive(ctx, req.Channel)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get active game: %w", err)
	}
	if err := checkAsk(game, r); err != nil {
		return nil, nil, err
	}

	item := &domain.Item{
		Kind:  r.kind,
		Asker: req.User,
		Text:  text,
	}
	if err := s.repo.CreateItem(ctx, game, item, r.ask, r.pending); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, nil, s.explainConflict(ctx, req.Channel, r)
		}
		return nil, nil, fmt.Errorf("failed to create %s: %w", r.kind, err)
	}

	s.logger.Info("Item asked",
		zap.String("kind", string(item.Kind)),
		zap.String("item_id", item.ID),
		zap.String("game_id", game.ID),
		zap.String("asker", item.Asker),
	)
	return item, game, nil
}

// explainConflict reports why a racing request lost, using the state the
// winner left behind
func (s *GameService) explainConflict(ctx context.Context, channel string, r round) error {
	game, err := s.repo.GetActive(ctx, channel)
	if err != nil {
		return fmt.Errorf("failed to get active game: %w", err)
	}
	if err := checkAsk(game, r); err != nil {
		return err
	}
	return domain.Violation(msgChanged)
}

// Answer applies the creator's yes/no button press to a stump or question
func (s *GameService) Answer(ctx context.Context, req Request, choice domain.Choice) (*Result, error) {
	r, ok := rounds[choice.Kind]
	if !ok {
		return nil, fmt.Errorf("unknown item kind %q", choice.Kind)
	}

	item, err := s.repo.GetItem(ctx, choice.Kind, choice.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", choice.Kind, err)
	}
	game, err := s.repo.GetGame(ctx, item.GameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}
	if game.Channel != req.Channel {
		return nil, fmt.Errorf("%s belongs to another channel: %w", choice.Kind, domain.ErrNotFound)
	}

	if req.User != game.Creator {
		return nil, domain.Violation("Only %s can answer this %s", game.Creator, choice.Kind)
	}
	if !item.Pending() {
		return nil, domain.Violation("This %s was already answered", choice.Kind)
	}
	if game.Phase.Terminal() {
		return nil, domain.Violation("This game is no longer active")
	}
	if game.Phase != r.pending {
		return nil, domain.Violation("This %s is not waiting for an answer", choice.Kind)
	}

	to := domain.PhaseStump
	if choice.Yes {
		to = r.onYes
	}
	if err := s.repo.AnswerItem(ctx, item, choice.Yes, r.pending, to); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, domain.Violation("This %s was already answered", choice.Kind)
		}
		return nil, fmt.Errorf("failed to answer %s: %w", choice.Kind, err)
	}
	game.Phase = to

	s.logger.Info("Item answered",
		zap.String("kind", string(item.Kind)),
		zap.String("item_id", item.ID),
		zap.String("game_id", game.ID),
		zap.Bool("answer", choice.Yes),
		zap.String("phase", to.String()),
	)

	res := &Result{Text: answerText(game, item, choice.Yes)}

	// the answer is committed, a failed summary only loses the extra line
	status, err := s.StatusFor(ctx, req.Channel, game)
	if err != nil {
		s.logger.Warn("Failed to compose summary", zap.Error(err), zap.String("game_id", game.ID))
	} else if status != nil {
		res.Summary = status.Summary()
	}
	return res, nil
}

func answerText(game *domain.Game, item *domain.Item, yes bool) string {
	switch {
	case item.Kind == domain.KindStump && yes:
		return fmt.Sprintf("%s was stumped. %s can now ask questions.",
			domain.Bold(game.Creator), domain.Bold(domain.Mention(item.Asker)))
	case item.Kind == domain.KindStump:
		return fmt.Sprintf("%s wasn't stumped. %s, then try again everyone!",
			domain.Bold(game.Creator), domain.Bold("Make sure they prove it"))
	case yes:
		return fmt.Sprintf("%s %s can ask again.", domain.Bold("Correct!"), domain.Escape(domain.Mention(item.Asker)))
	default:
		return fmt.Sprintf("%s Time for everyone to stump.", domain.Bold("Nope!"))
	}
}

// Cancel cancels the game or its pending stump or question
func (s *GameService) Cancel(ctx context.Context, req Request, target string) (*Result, error) {
	switch strings.TrimSpace(target) {
	case "game":
		return s.cancelGame(ctx, req)
	case "stump":
		return s.cancelItem(ctx, req, rounds[domain.KindStump])
	case "question":
		return s.cancelItem(ctx, req, rounds[domain.KindQuestion])
	case "":
		return nil, domain.Violation("No cancel argument provided")
	default:
		return nil, domain.Violation("Can't cancel %q, pick game, stump or question", target)
	}
}

func (s *GameService) cancelGame(ctx context.Context, req Request) (*Result, error) {
	// a concurrent answer may move the phase under us, retry with the fresh one
	const attempts = 3
	for i := 0; i < attempts; i++ {
		game, err := s.repo.GetActive(ctx, req.Channel)
		if err != nil {
			return nil, fmt.Errorf("failed to get active game: %w", err)
		}
		if game == nil {
			return nil, domain.Violation(msgNoGame)
		}

		err = s.repo.UpdatePhase(ctx, game, game.Phase, domain.PhaseCancelled)
		if errors.Is(err, domain.ErrConflict) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to cancel game: %w", err)
		}

		s.logger.Info("Game cancelled",
			zap.String("game_id", game.ID),
			zap.String("channel", game.Channel),
			zap.String("user", req.User),
		)
		return &Result{Text: fmt.Sprintf("%s cancelled current game", domain.Bold(req.User))}, nil
	}
	return nil, domain.Violation(msgChanged)
}

func (s *GameService) cancelItem(ctx context.Context, req Request, r round) (*Result, error) {
	game, err := s.repo.GetActive(ctx, req.Channel)
	if err != nil {
		return nil, fmt.Errorf("failed to get active game: %w", err)
	}
	if game == nil {
		return nil, domain.Violation(msgNoGame)
	}

	nothing := &Result{Text: "Nothing to cancel", Private: true}

	item, err := s.repo.PendingItem(ctx, game.ID, r.kind)
	if err != nil {
		return nil, fmt.Errorf("failed to get pending %s: %w", r.kind, err)
	}
	if item == nil {
		return nothing, nil
	}

	if err := s.repo.DeleteItem(ctx, item, r.pending, r.ask); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			// answered in the meantime
			return nothing, nil
		}
		return nil, fmt.Errorf("failed to cancel %s: %w", r.kind, err)
	}

	s.logger.Info("Item cancelled",
		zap.String("kind", string(item.Kind)),
		zap.String("item_id", item.ID),
		zap.String("game_id", game.ID),
		zap.String("user", req.User),
	)
	return &Result{
		Text:      fmt.Sprintf("%s cancelled the pending %s: %s", domain.Bold(req.User), r.kind, domain.Bold(item.Text)),
		DeleteRef: item.MessageRef,
	}, nil
}

// AttachMessage remembers which chat message presented a prompt
func (s *GameService) AttachMessage(ctx context.Context, p *Prompt, ref string) error {
	return s.repo.SetMessageRef(ctx, p.Kind, p.ID, ref)
}

// Status reports the channel's current game
func (s *GameService) Status(ctx context.Context, req Request, _ string) (*Result, error) {
	status, err := s.StatusFor(ctx, req.Channel, nil)
	if err != nil {
		return nil, err
	}
	if status == nil {
		return &Result{Text: "No active game of Botticelli"}, nil
	}
	return &Result{Text: status.Render()}, nil
}

// StatusFor composes the status of game, or of the channel's active game
// when game is nil. It returns nil if there is no game.
func (s *GameService) StatusFor(ctx context.Context, channel string, game *domain.Game) (*domain.Status, error) {
	if game == nil {
		var err error
		game, err = s.repo.GetActive(ctx, channel)
		if err != nil {
			return nil, fmt.Errorf("failed to get active game: %w", err)
		}
		if game == nil {
			return nil, nil
		}
	}

	waitingOn, toDo, err := s.nextMove(ctx, game)
	if err != nil {
		return nil, err
	}

	questions, err := s.repo.ListQuestions(ctx, game.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}

	return domain.NewStatus(game, waitingOn, toDo, questions), nil
}

// nextMove derives who the game waits on and what they should do
func (s *GameService) nextMove(ctx context.Context, game *domain.Game) (string, string, error) {
	switch game.Phase {
	case domain.PhaseStump:
		return "anyone", "ask a stumper", nil
	case domain.PhasePendingStump:
		text, err := s.pendingText(ctx, game, domain.KindStump)
		return game.Creator, "respond to stumper: " + text, err
	case domain.PhaseQuestion:
		asker, err := s.repo.LatestStumper(ctx, game.ID)
		if err != nil {
			return "", "", fmt.Errorf("failed to get latest stumper: %w", err)
		}
		return asker, "ask a question", nil
	case domain.PhasePendingQuestion:
		text, err := s.pendingText(ctx, game, domain.KindQuestion)
		return game.Creator, "respond to question: " + text, err
	}
	return "nobody", "start a new game", nil
}

func (s *GameService) pendingText(ctx context.Context, game *domain.Game, kind domain.ItemKind) (string, error) {
	item, err := s.repo.PendingItem(ctx, game.ID, kind)
	if err != nil {
		return "", fmt.Errorf("failed to get pending %s: %w", kind, err)
	}
	if item == nil {
		return "", nil
	}
	return item.Text, nil
}

const helpText = `<b>Commands:</b>
<b>status</b> - Print current game status to channel
<b>start</b> - Start a game
    Ex: /botticelli start Mike Tyson
<b>stump</b> - Ask a round 1 stumper
    Ex: /botticelli stump did you write some dumb book?
<b>ask</b> - Ask a round 2 question
    Ex: /botticelli ask are you alive?
<b>cancel</b> - Cancel the game, or the pending stump or question
    Ex: /botticelli cancel game`

// Help lists the commands
func (s *GameService) Help(ctx context.Context, req Request, _ string) (*Result, error) {
	return &Result{Text: helpText, Private: true}, nil
}
