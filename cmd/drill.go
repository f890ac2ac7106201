package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/abhisek/codedrills/internal/catalog"
	"github.com/abhisek/codedrills/internal/clock"
	"github.com/abhisek/codedrills/internal/config"
	"github.com/abhisek/codedrills/internal/hints"
	"github.com/abhisek/codedrills/internal/history"
	"github.com/abhisek/codedrills/internal/scoring"
	"github.com/abhisek/codedrills/internal/session"
	"github.com/abhisek/codedrills/internal/ui/layout"
)

const hintTimeout = 30 * time.Second

var drillCmd = &cobra.Command{
	Use:   "drill",
	Short: "Run a session in the terminal without the full-screen UI",
	Long: "Run a drill or quiz session line by line on stdin/stdout.\n\n" +
		"Type an answer and press Enter. Commands: :skip, :hint, :end, :help.",
	RunE: runDrill,
}

func init() {
	addDrillFlags(drillCmd.Flags())
}

func addDrillFlags(f *pflag.FlagSet) {
	f.StringSlice("category", nil, "Categories to draw from (default all)")
	f.String("difficulty", "all", "Difficulty: easy, medium, hard or all")
	f.Int("count", session.DefaultConfig().QuestionCount, "Number of questions")
	f.Int("time-limit", 0, "Seconds per question, 0 for untimed (overrides DRILLS_TIME_LIMIT)")
	f.Uint64("seed", 0, "Fix the problem order (overrides DRILLS_SEED)")
	f.Bool("quiz", false, "Multiple-choice quiz instead of typed answers")
	f.Bool("no-history", false, "Do not record this session")
}

func runDrill(cmd *cobra.Command, args []string) error {
	env, err := loadEnv(cmd, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer env.Close()

	cfg, err := drillConfig(cmd, env.cfg)
	if err != nil {
		return err
	}
	cat, err := env.loadCatalog()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	r := newLineRunner(cmd.OutOrStdout())
	observers := []session.Observer{r}
	var svc *hints.Service
	if noHistory, _ := cmd.Flags().GetBool("no-history"); noHistory {
		svc = env.hintService(ctx, nil, nil, cmd.ErrOrStderr())
	} else {
		st, err := env.openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()
		rec := history.NewRecorder(st.EventRepo(), env.logger)
		observers = append(observers, rec)
		svc = env.hintService(ctx, st.EventRepo(), rec, cmd.ErrOrStderr())
	}

	observers = append(observers, svc)
	r.attach(cat, svc, env.cfg.Scoring, env.logger, clock.Real{}, session.Observers(observers...))
	return r.Run(ctx, cfg, cmd.InOrStdin())
}

// drillConfig builds the session configuration from flags, falling back
// to the loaded config for the time limit and seed.
func drillConfig(cmd *cobra.Command, defaults config.Config) (session.Config, error) {
	f := cmd.Flags()
	cfg := session.DefaultConfig()
	cfg.TimeLimit = defaults.TimeLimit
	cfg.Seed = defaults.Seed

	cfg.Categories, _ = f.GetStringSlice("category")
	cfg.QuestionCount, _ = f.GetInt("count")

	diff, _ := f.GetString("difficulty")
	d, ok := catalog.ParseDifficulty(diff)
	if !ok {
		return cfg, fmt.Errorf("invalid --difficulty %q: want easy, medium, hard or all", diff)
	}
	cfg.Difficulty = d

	if f.Changed("time-limit") {
		secs, _ := f.GetInt("time-limit")
		cfg.TimeLimit = time.Duration(secs) * time.Second
	}
	if f.Changed("seed") {
		cfg.Seed, _ = f.GetUint64("seed")
	}
	if quiz, _ := f.GetBool("quiz"); quiz {
		cfg.Mode = session.ModeQuiz
	}
	return cfg, nil
}

// lineRunner drives an engine from lines of input. Every engine call,
// including countdown callbacks, happens while holding mu.
type lineRunner struct {
	mu     sync.Mutex
	engine *session.Engine
	hints  *hints.Service
	out    io.Writer

	// timeouts carries countdown expiries from the timer goroutine to Run.
	timeouts chan session.Attempt

	// shown is the index of the problem whose prompt was last printed.
	shown      int
	lastAnswer string
}

var _ session.Observer = (*lineRunner)(nil)

func newLineRunner(out io.Writer) *lineRunner {
	return &lineRunner{out: out, timeouts: make(chan session.Attempt, 4)}
}

func (r *lineRunner) attach(cat *catalog.Catalog, svc *hints.Service, policy scoring.Policy, logger *slog.Logger, clk clock.Clock, obs session.Observer) {
	opts := []session.Option{
		session.WithClock(clk),
		session.WithPolicy(policy),
		session.WithLogger(logger),
		session.WithObserver(obs),
	}
	if s, ok := clk.(clock.Scheduler); ok {
		opts = append(opts, session.WithScheduler(clock.Guarded(s, &r.mu)))
	}
	r.engine = session.New(cat, opts...)
	r.hints = svc
}

func (r *lineRunner) SessionStarted(session.RunInfo) {}
func (r *lineRunner) SessionEnded(session.Summary)   {}

func (r *lineRunner) AttemptRecorded(_ string, _ int, a session.Attempt) {
	if !a.TimedOut {
		return
	}
	select {
	case r.timeouts <- a:
	default:
	}
}

// Run starts a session with cfg and processes input until the user quits,
// input ends or ctx is cancelled. An active session is ended, and so
// recorded, on the way out.
func (r *lineRunner) Run(ctx context.Context, cfg session.Config, in io.Reader) error {
	r.mu.Lock()
	err := r.engine.Start(cfg)
	if err == nil {
		r.showProblem()
	}
	r.mu.Unlock()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}

	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			r.mu.Lock()
			r.endEarly()
			r.mu.Unlock()
			return nil
		case a := <-r.timeouts:
			r.mu.Lock()
			r.onTimeout(a)
			r.mu.Unlock()
		case line, ok := <-lines:
			r.mu.Lock()
			done := true
			if ok {
				done = r.handle(ctx, line)
			} else {
				r.endEarly()
			}
			r.mu.Unlock()
			if done {
				return nil
			}
		}
	}
}

// handle processes one line and reports whether the runner should exit.
func (r *lineRunner) handle(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)

	if r.engine.Phase() == session.PhaseResults {
		return r.handleResults(line)
	}

	if r.engine.Progress().Index != r.shown {
		r.println("(That answer arrived after the time ran out.)")
		return false
	}

	switch strings.ToLower(line) {
	case "":
		r.prompt()
	case ":help", ":?":
		r.printHelp()
		r.prompt()
	case ":skip", ":s":
		p, _ := r.engine.CurrentProblem()
		if _, err := r.engine.Skip(); err != nil {
			r.println("error:", err)
			return false
		}
		r.println("– Skipped. Expected:", referenceAnswer(p, r.quiz()))
		r.advance()
	case ":hint", ":h":
		r.showHint(ctx)
	case ":end", ":quit", ":q":
		r.endEarly()
		r.resultsMenu()
	default:
		r.submit(line)
	}
	return false
}

func (r *lineRunner) handleResults(line string) bool {
	var err error
	switch strings.ToLower(line) {
	case "r":
		err = r.engine.RetrySame()
	case "n":
		err = r.engine.RetryNew(nil)
	case "", "q":
		return true
	default:
		r.resultsMenu()
		return false
	}
	if err != nil {
		r.println("error:", describeErr(err))
		r.resultsMenu()
		return false
	}
	r.showProblem()
	return false
}

func (r *lineRunner) submit(answer string) {
	p, _ := r.engine.CurrentProblem()
	r.lastAnswer = answer
	a, err := r.engine.Submit(answer)
	if err != nil {
		r.println("error:", err)
		return
	}
	if a.Verdict == scoring.VerdictCorrect {
		r.println(fmt.Sprintf("✓ Correct! +%d", a.Points))
		if streak := r.engine.Score().Streak; scoring.IsStreakMilestone(streak) {
			r.println(fmt.Sprintf("🔥 %d in a row!", streak))
		}
	} else {
		r.println("✗ Incorrect. Expected:", referenceAnswer(p, r.quiz()))
	}
	r.advance()
}

func (r *lineRunner) showHint(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, hintTimeout)
	defer cancel()

	h, err := r.hints.Next(ctx, r.engine, r.lastAnswer)
	switch {
	case err == nil && h.Generated():
		r.println("💡 (AI)", h.Text)
	case err == nil:
		r.println("💡", h.Text)
	case errors.Is(err, hints.ErrExhausted):
		r.println("No more hints for this problem.")
	default:
		r.println("Hint unavailable:", err)
	}
	r.prompt()
}

func (r *lineRunner) onTimeout(a session.Attempt) {
	idx := slices.IndexFunc(r.engine.Problems(), func(p catalog.Problem) bool { return p.ID == a.ProblemID })
	if idx >= 0 {
		r.println("\n⏱ Time's up. Expected:", referenceAnswer(r.engine.Problems()[idx], r.quiz()))
	}
	r.advance()
}

// advance shows the next problem, or the results once the run is over.
func (r *lineRunner) advance() {
	r.lastAnswer = ""
	if r.engine.Phase() == session.PhaseResults {
		summary, err := r.engine.Results()
		if err == nil {
			r.printSummary(summary)
		}
		r.resultsMenu()
		return
	}
	r.showProblem()
}

func (r *lineRunner) endEarly() {
	if r.engine.Phase() != session.PhaseActive {
		return
	}
	summary, err := r.engine.End()
	if err != nil {
		r.println("error:", err)
		return
	}
	r.println()
	r.printSummary(summary)
}

func (r *lineRunner) quiz() bool {
	return r.engine.Config().Mode == session.ModeQuiz
}

func (r *lineRunner) showProblem() {
	p, ok := r.engine.CurrentProblem()
	if !ok {
		return
	}
	prog := r.engine.Progress()
	score := r.engine.Score()
	r.shown = prog.Index

	head := fmt.Sprintf("[%d/%d] %s · %s   score %d", prog.Index+1, prog.Total, p.Category, p.Difficulty.DisplayName(), score.Score)
	if score.Streak > 1 {
		head += fmt.Sprintf("   streak %d", score.Streak)
	}
	if rem, timed := r.engine.Remaining(); timed {
		head += "   ⏱ " + layout.FormatDuration(int(rem.Round(time.Second).Seconds()))
	}

	r.println()
	r.println(head)
	r.println(p.DisplayTitle())
	r.println(p.Prompt)
	if p.Setup != "" {
		r.println(indent(p.Setup, "    "))
	}
	if r.quiz() {
		for _, c := range p.Choices {
			r.println(fmt.Sprintf("  %s) %s", c.ID, c.Text))
		}
	}
	r.prompt()
}

func (r *lineRunner) printSummary(s session.Summary) {
	r.println(fmt.Sprintf("%s complete: %d pts", s.Mode.DisplayName(), s.TotalPoints))
	skipped := fmt.Sprint(s.SkippedCount)
	if s.TimedOutCount > 0 {
		skipped += fmt.Sprintf(" (%d timed out)", s.TimedOutCount)
	}
	r.println(fmt.Sprintf("Correct %d · Incorrect %d · Skipped %s · Accuracy %.0f%% · Best streak %d · Time %s",
		s.CorrectCount, s.IncorrectCount, skipped, s.Accuracy*100, s.MaxStreak,
		layout.FormatDuration(int(s.Elapsed.Seconds()))))
	if n := s.Unattempted(); n > 0 {
		r.println(fmt.Sprintf("%d problem(s) not attempted", n))
	}
	for _, c := range s.Categories() {
		e := s.Breakdown[c]
		r.println(fmt.Sprintf("  %-12s %d/%d  %3.0f%%", c, e.Correct, e.Attempted, e.Accuracy()*100))
	}
	r.println(fmt.Sprintf("Seed %d", s.Seed))
}

func (r *lineRunner) resultsMenu() {
	fmt.Fprint(r.out, "\n[r] retry same  [n] new problems  [q] quit > ")
}

func (r *lineRunner) printHelp() {
	r.println("Type your answer and press Enter.")
	r.println("  :skip   skip this problem (breaks the streak)")
	r.println("  :hint   show a hint")
	r.println("  :end    end the session now")
}

func (r *lineRunner) prompt() {
	fmt.Fprint(r.out, "> ")
}

func (r *lineRunner) println(a ...any) {
	fmt.Fprintln(r.out, a...)
}

func referenceAnswer(p catalog.Problem, quiz bool) string {
	if quiz {
		if c, ok := p.Choice(p.Answer); ok {
			return fmt.Sprintf("%s) %s", c.ID, c.Text)
		}
	}
	if p.SampleAnswer != "" {
		return p.SampleAnswer
	}
	return p.ExpectedOutput
}

func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}

// describeErr turns configuration errors into a sentence for the user.
func describeErr(err error) string {
	switch {
	case errors.Is(err, session.ErrNoProblems):
		return "no problems match the chosen categories and difficulty"
	case session.IsConfigurationError(err):
		return errors.Unwrap(err).Error()
	}
	return err.Error()
}
