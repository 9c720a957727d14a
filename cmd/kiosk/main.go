// The kiosk is a terminal front-end for the registration flow.  It drives
// the same popup and checkout machinery the web surface uses, against a
// running server: the popup controller decides when to offer registration,
// the orchestrator walks a payment through order creation, the gateway
// callback and server-side verification, and a verified payment is
// completed with POST /api/register.
package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/brajcamp/camp-registration/internal/checkout"
	"github.com/brajcamp/camp-registration/internal/model"
	"github.com/brajcamp/camp-registration/internal/popup"
	"github.com/brajcamp/camp-registration/internal/sched"
	"github.com/brajcamp/camp-registration/internal/supervisor"
)

// apiClient speaks to the registration server.  It implements the
// orchestrator's OrderCreator and Verifier ports over HTTP.
type apiClient struct {
	base string
	http *http.Client
}

func newAPIClient(base string) *apiClient {
	return &apiClient{base: strings.TrimRight(base, "/"), http: &http.Client{Timeout: 15 * time.Second}}
}

func (c *apiClient) postJSON(ctx context.Context, path string, body, out interface{}) (int, error) {
	buf, err := json.Marshal(body)
	if err != nil {
		return 0, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, bytes.NewReader(buf))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, err
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return resp.StatusCode, fmt.Errorf("decode %s response: %w", path, err)
		}
	}
	return resp.StatusCode, nil
}

// CreateOrder asks the server for a gateway order.  The amount is derived
// server-side from the accommodation kind; the kiosk sends only the kind.
func (c *apiClient) CreateOrder(ctx context.Context, kind model.Accommodation) (checkout.Order, error) {
	var out struct {
		ID       string `json:"id"`
		Amount   int64  `json:"amount"`
		Currency string `json:"currency"`
		Error    string `json:"error"`
	}
	status, err := c.postJSON(ctx, "/api/payment/order", map[string]string{"accommodation": string(kind)}, &out)
	if err != nil {
		return checkout.Order{}, err
	}
	if status != http.StatusOK {
		return checkout.Order{}, fmt.Errorf("order creation failed (%d): %s", status, out.Error)
	}
	return checkout.Order{ID: out.ID, AmountPaise: out.Amount, Currency: out.Currency}, nil
}

// VerifyPayment asks the server to authenticate a gateway callback.
func (c *apiClient) VerifyPayment(ctx context.Context, orderID, paymentID, signature string) (bool, error) {
	var out struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	status, err := c.postJSON(ctx, "/api/payment/verify", map[string]string{
		"orderId":   orderID,
		"paymentId": paymentID,
		"signature": signature,
	}, &out)
	if err != nil {
		return false, err
	}
	if status == http.StatusOK && out.Success {
		return true, nil
	}
	return false, nil
}

// Register completes a verified payment.  The server re-verifies the
// signature before appending, so this call carries it along.
func (c *apiClient) Register(ctx context.Context, d model.Devotee, res checkout.Result) (string, error) {
	var out struct {
		ID      string `json:"id"`
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	status, err := c.postJSON(ctx, "/api/register", map[string]string{
		"name":          d.Name,
		"email":         d.Email,
		"contactNo":     d.ContactNo,
		"facilitator":   d.Facilitator,
		"area":          d.Area,
		"level":         d.Level,
		"medicalNotes":  d.MedicalNotes,
		"accommodation": string(res.Selection),
		"orderId":       res.OrderID,
		"paymentId":     res.PaymentID,
		"signature":     res.Signature,
	}, &out)
	if err != nil {
		return "", err
	}
	if status != http.StatusCreated || !out.Success {
		return "", fmt.Errorf("registration failed (%d): %s", status, out.Error)
	}
	return out.ID, nil
}

// termNavigator opens hosted payment pages by printing the address; a
// kiosk terminal has no window to spawn, so OpenWindow always declines and
// the orchestrator falls back to Navigate.
type termNavigator struct{}

func (termNavigator) OpenWindow(string) bool { return false }
func (termNavigator) Navigate(u string)      { fmt.Printf("  -> complete the payment at %s\n", u) }

// session ties the popup controller, the checkout orchestrator and the
// server client together for one kiosk run.
type session struct {
	api     *apiClient
	devotee model.Devotee

	tracker *popup.ActivityTracker
	monitor *popup.Monitor
	ctrl    *popup.Controller
	orch    *checkout.Orchestrator

	lastKind model.Accommodation
	pageRoom string
	pageDorm string
}

func newSession(api *apiClient, d model.Devotee) *session {
	s := &session{
		api:      api,
		devotee:  d,
		tracker:  popup.NewActivityTracker(),
		pageRoom: os.Getenv("PAYMENT_PAGE_ROOM_URL"),
		pageDorm: os.Getenv("PAYMENT_PAGE_DORM_URL"),
	}
	s.orch = checkout.NewOrchestrator(api, api, s.completed)
	s.monitor = popup.NewMonitor(popup.DefaultThresholds(), func(healthy bool) {
		if s.ctrl != nil {
			s.ctrl.NotifyHealth(healthy)
		}
	})
	s.ctrl = popup.NewController(popup.DefaultConfig(), s.tracker, s.monitor, s.opened, s.closed)
	return s
}

func (s *session) start() { s.ctrl.Start() }

func (s *session) stop() {
	s.orch.Close()
	s.ctrl.Stop()
}

func (s *session) opened() {
	s.orch.Open()
	fmt.Println("registration popup opened; choose 'select room' or 'select dormitory'")
}

func (s *session) closed() {
	s.orch.Close()
	fmt.Println("registration popup closed")
}

// completed runs on every verified payment.
func (s *session) completed(res checkout.Result) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	id, err := s.api.Register(ctx, s.devotee, res)
	if err != nil {
		fmt.Printf("payment verified but registration failed: %v\n", err)
		return
	}
	fmt.Printf("registered! id=%s order=%s payment=%s\n", id, res.OrderID, res.PaymentID)
	s.ctrl.Close()
}

// sampleHealth feeds the popup monitor one runtime observation.  Frame
// rate and render time have no terminal equivalent, so the kiosk reports
// nominal values and lets heap usage drive the memory threshold.
func (s *session) sampleHealth() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	s.monitor.Observe(popup.Sample{
		FrameRate:    60,
		MemoryMB:     float64(m.HeapAlloc) / (1 << 20),
		RenderTimeMs: 1,
	})
}

func main() {
	_ = godotenv.Load()

	server := flag.String("server", "http://localhost:8080", "registration server base URL")
	name := flag.String("name", "", "attendee name")
	email := flag.String("email", "", "attendee email")
	contact := flag.String("contact", "", "attendee phone number")
	facilitator := flag.String("facilitator", "", "facilitator name")
	area := flag.String("area", "", "centre/area")
	level := flag.String("level", "", "study level")
	notes := flag.String("notes", "", "medical notes (optional)")
	flag.Parse()

	if *name == "" || *email == "" || *facilitator == "" || *area == "" || *level == "" {
		log.Fatal("usage: kiosk -name ... -email ... -facilitator ... -area ... -level ... [-contact ...] [-notes ...]")
	}

	d := model.Devotee{
		Name:         *name,
		Email:        *email,
		ContactNo:    *contact,
		Facilitator:  *facilitator,
		Area:         *area,
		Level:        *level,
		MedicalNotes: *notes,
	}

	api := newAPIClient(*server)
	s := newSession(api, d)

	// A failed checkout run is reopened with backoff rather than leaving
	// the form dead; after the policy's attempts run out the kiosk exits.
	sup := supervisor.New(supervisor.DefaultPolicy(),
		func() {
			s.orch.Open()
			fmt.Println("checkout reopened; select again")
		},
		func(err error) {
			log.Fatalf("checkout kept failing, giving up: %v", err)
		})
	defer sup.Stop()

	s.start()

	// Periodic health sampling, the terminal stand-in for the render loop.
	health := sched.New()
	defer health.DisposeAll()
	health.Every(5*time.Second, func() { s.sampleHealth() })
	s.sampleHealth()

	fmt.Printf("kiosk connected to %s\n", *server)
	fmt.Println("commands: open, close, select <room|dormitory>, pay, hosted, callback <order> <payment> <signature>, dismiss, state, blur, focus, scroll <velocity>, quit")

	in := bufio.NewScanner(os.Stdin)
	for in.Scan() {
		line := strings.TrimSpace(in.Text())
		if line == "" {
			continue
		}
		// Every keystroke is user activity as far as the popup is concerned.
		s.tracker.RecordActivity()

		fields := strings.Fields(line)
		if err := run(s, sup, fields); err != nil {
			if err == errQuit {
				return
			}
			fmt.Printf("error: %v\n", err)
		}
	}
}

var errQuit = fmt.Errorf("quit")

func run(s *session, sup *supervisor.Supervisor, fields []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch fields[0] {
	case "quit", "exit":
		s.stop()
		return errQuit

	case "open":
		if !s.ctrl.Open() {
			fmt.Println("popup refused to open (debounce, health or already open)")
		}
	case "close":
		s.ctrl.Close()

	case "select":
		if len(fields) != 2 {
			return fmt.Errorf("usage: select <room|dormitory>")
		}
		kind, ok := model.ParseAccommodation(fields[1])
		if !ok {
			return fmt.Errorf("unknown accommodation %q", fields[1])
		}
		dev := s.devotee
		dev.Accommodation = kind
		if err := s.orch.Select(dev, kind); err != nil {
			return err
		}
		s.lastKind = kind
		fmt.Printf("selected %s (₹%d)\n", kind, kind.PriceRupees())

	case "pay":
		if err := s.orch.Proceed(ctx); err != nil {
			sup.ReportFailure(err)
			return err
		}
		sup.ReportRecovered()
		fmt.Println("order created; awaiting gateway callback (use 'callback <order> <payment> <signature>')")

	case "hosted":
		page := s.pageRoom
		if s.lastKind == model.AccommodationDormitory {
			page = s.pageDorm
		}
		if err := s.orch.ProceedHosted(termNavigator{}, page); err != nil {
			return err
		}

	case "callback":
		if len(fields) != 4 {
			return fmt.Errorf("usage: callback <order> <payment> <signature>")
		}
		if err := s.orch.HandleCallback(ctx, fields[1], fields[2], fields[3]); err != nil {
			return err
		}

	case "dismiss":
		s.orch.HandleDismissed()

	case "state":
		fmt.Printf("checkout=%s", s.orch.State())
		if r := s.orch.Reason(); r != "" {
			fmt.Printf(" reason=%s", r)
		}
		fmt.Printf(" popup_open=%v supervisor=%s\n", s.ctrl.IsOpen(), sup.State())

	case "blur":
		s.tracker.SetFocused(false)
	case "focus":
		s.tracker.SetFocused(true)

	case "scroll":
		if len(fields) != 2 {
			return fmt.Errorf("usage: scroll <velocity>")
		}
		v, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return fmt.Errorf("bad velocity %q", fields[1])
		}
		s.ctrl.ReportScroll(v)
		if v <= popup.DefaultConfig().ScrollVelocityMax {
			s.ctrl.NotifyScrollSettled()
		}

	default:
		return fmt.Errorf("unknown command %q", fields[0])
	}
	return nil
}
