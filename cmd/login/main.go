package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/prefeitura-rio/app-login/internal/config"
	"github.com/prefeitura-rio/app-login/internal/events"
	"github.com/prefeitura-rio/app-login/internal/flow"
	"github.com/prefeitura-rio/app-login/internal/logging"
	"github.com/prefeitura-rio/app-login/internal/models"
	"github.com/prefeitura-rio/app-login/internal/session"
	"github.com/prefeitura-rio/app-login/internal/storage"
	"github.com/prefeitura-rio/app-login/internal/utils"
	"github.com/prefeitura-rio/app-login/internal/verification"
	"go.uber.org/zap"
)

func main() {
	device := flag.String("device", "terminal", "device id used to namespace the stored session")
	logout := flag.Bool("logout", false, "remove the stored identity and exit")
	flag.Parse()

	if os.Getenv("LOG_LEVEL") != "" {
		if err := logging.InitLogger(); err != nil {
			fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
			os.Exit(1)
		}
	}

	if err := config.LoadConfig(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	cfg := config.AppConfig
	if _, set := os.LookupEnv("STORE_BACKEND"); !set {
		cfg.StoreBackend = config.StoreBackendFile
	}

	kv, err := storage.Open(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open session store: %v\n", err)
		os.Exit(1)
	}
	store := session.NewStore(kv, cfg.StoreKeyPrefix, cfg.VerificationSessionTTL).ForDevice(*device)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bus := events.NewBus(16)

	if *logout {
		if err := flow.Logout(ctx, store, bus, *device); err != nil {
			fmt.Fprintf(os.Stderr, "logout: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Logged out.")
		return
	}

	var service verification.Service
	if cfg.VerificationMode == config.VerificationModeFake {
		service = verification.NewFakeService(cfg.VerificationSessionTTL)
	} else {
		httpService := verification.NewHTTPService(cfg.VerificationBaseURL, cfg.VerificationTimeout)
		defer httpService.Close()
		service = httpService
	}

	// Error notifications repeat the step's field error, which is printed
	// before each prompt.
	notes, cancel := bus.Subscribe(func(ev events.Event) bool {
		return ev.Kind == events.KindNotification && ev.Level != events.LevelError
	})
	defer cancel()
	go func() {
		for ev := range notes {
			fmt.Fprintf(os.Stderr, "[%s] %s\n", ev.Level, ev.Message)
		}
	}()

	ctrl := flow.NewController(flow.Options{
		DeviceID:              *device,
		Store:                 store,
		Service:               service,
		Events:                bus,
		ResendWindow:          cfg.ResendWindow,
		PostLoginDestination:  cfg.PostLoginDestination,
		AllowedCountryCodes:   cfg.AllowedCountryCodes,
		DefaultCountryCode:    cfg.DefaultCountryCode,
		StrictPhoneValidation: cfg.StrictPhoneValidation,
	})

	if err := ctrl.Open(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "failed to start login: %v\n", err)
		os.Exit(1)
	}

	t := newTerminal(ctrl, os.Stdin, os.Stdout, os.Stderr)
	dest, err := t.run(ctx)
	ctrl.Close()
	ctrl.Wait()
	if err != nil {
		logging.Logger.Debug("login aborted", zap.Error(err))
		fmt.Fprintln(os.Stderr, "Login aborted. Run again to resume.")
		os.Exit(1)
	}
	fmt.Printf("Continue at %s\n", dest)
}

var errAborted = errors.New("input closed")

type terminal struct {
	ctrl   *flow.Controller
	in     *bufio.Scanner
	out    io.Writer
	errOut io.Writer
}

func newTerminal(ctrl *flow.Controller, in io.Reader, out, errOut io.Writer) *terminal {
	return &terminal{ctrl: ctrl, in: bufio.NewScanner(in), out: out, errOut: errOut}
}

func (t *terminal) prompt(label string) (string, error) {
	fmt.Fprint(t.out, label)
	if !t.in.Scan() {
		if err := t.in.Err(); err != nil {
			return "", err
		}
		return "", errAborted
	}
	return strings.TrimSpace(t.in.Text()), nil
}

// report prints errors returned by input intents.
func (t *terminal) report(err error) {
	if err == nil {
		return
	}
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		fmt.Fprintf(t.errOut, "%s\n", verr.Err)
		return
	}
	fmt.Fprintf(t.errOut, "%v\n", err)
}

// reportSubmit prints rejected submits. Validation and remote failures are
// kept as the step's field error and shown by showFieldError.
func (t *terminal) reportSubmit(err error) {
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		return
	}
	t.report(err)
}

func (t *terminal) showFieldError(msg *string) {
	if msg != nil && *msg != "" {
		fmt.Fprintf(t.errOut, "%s\n", *msg)
	}
}

func (t *terminal) run(ctx context.Context) (string, error) {
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		snap := t.ctrl.Snapshot()
		var err error
		switch snap.State.Step {
		case models.StepPhone:
			err = t.phoneStep(ctx, snap.Phone)
		case models.StepOtp:
			err = t.otpStep(ctx, snap.OTP)
		case models.StepProfile:
			err = t.profileStep(ctx, snap.Profile)
		case models.StepWelcome:
			if snap.Welcome.Name != "" {
				fmt.Fprintf(t.out, "Welcome, %s!\n", snap.Welcome.Name)
			} else {
				fmt.Fprintln(t.out, "Welcome!")
			}
			return t.ctrl.Finish(ctx)
		}
		if err != nil {
			return "", err
		}
	}
}

func (t *terminal) phoneStep(ctx context.Context, v *flow.PhoneView) error {
	t.showFieldError(v.Error)
	line, err := t.prompt(fmt.Sprintf("Phone number (%s, type 'cc <code>' to change, one of %s): ",
		v.CountryCode, strings.Join(v.CountryCodes, " ")))
	if err != nil {
		return err
	}

	if code, ok := strings.CutPrefix(line, "cc "); ok {
		t.report(t.ctrl.SetCountryCode(code))
		return nil
	}
	if err := t.ctrl.SetPhone(line); err != nil {
		t.report(err)
		return nil
	}
	t.reportSubmit(t.ctrl.SubmitPhone(ctx))
	return nil
}

func (t *terminal) otpStep(ctx context.Context, v *flow.OTPView) error {
	t.showFieldError(v.Error)
	sentTo := v.CountryCode + " " + v.PhoneNumber
	if v.DeliveryMethod != "" {
		sentTo += " via " + v.DeliveryMethod
	}

	resend := "'resend' when ready"
	if v.ResendSecondsRemaining > 0 {
		resend = fmt.Sprintf("'resend' in %ds", v.ResendSecondsRemaining)
	}
	hint := "6-digit code"
	if v.CanSubmit {
		hint = fmt.Sprintf("code [%s]", strings.Join(v.Digits[:], ""))
	}

	line, err := t.prompt(fmt.Sprintf("Code sent to %s. Enter the %s, %s, or 'back': ", sentTo, hint, resend))
	if err != nil {
		return err
	}

	switch line {
	case "back":
		t.report(t.ctrl.Back())
		return nil
	case "resend":
		t.report(t.ctrl.Resend(ctx))
		return nil
	case "":
		if !v.CanSubmit {
			return nil
		}
	default:
		if len(utils.ExtractDigits(line, models.OTPLength)) < models.OTPLength {
			t.report(models.ErrIncompleteOTP)
			return nil
		}
		if _, err := t.ctrl.PasteOTP(line); err != nil {
			t.report(err)
			return nil
		}
	}
	t.reportSubmit(t.ctrl.SubmitOTP(ctx))
	return nil
}

func (t *terminal) profileStep(ctx context.Context, v *flow.ProfileView) error {
	t.showFieldError(v.Error)
	line, err := t.prompt("Your name (leave empty to skip): ")
	if err != nil {
		return err
	}
	if line == "" {
		t.report(t.ctrl.Skip())
		return nil
	}
	if err := t.ctrl.SetName(line); err != nil {
		t.report(err)
		return nil
	}
	t.reportSubmit(t.ctrl.SubmitProfile(ctx))
	return nil
}
