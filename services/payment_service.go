package services

import (
	"fmt"
	"log"
	"strings"

	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/account"
	"github.com/stripe/stripe-go/v78/accountlink"
	"github.com/stripe/stripe-go/v78/checkout/session"
	"github.com/stripe/stripe-go/v78/webhook"
)

// CheckoutInput is everything the settlement bridge needs to open a hosted
// checkout session for one booking. Amounts are in cents.
type CheckoutInput struct {
	BookingID       string
	ResortName      string
	ResortLocation  string
	Nights          int
	BasePrice       int
	TotalPrice      int
	CustomerEmail   string
	PayoutAccountID *string
	Origin          string
}

// CheckoutCreator opens a hosted checkout session and returns its URL.
type CheckoutCreator interface {
	CreateCheckoutSession(in CheckoutInput) (string, error)
}

// PartnerOnboarder provisions a payout account and its onboarding link.
type PartnerOnboarder interface {
	CreateExpressAccount() (string, error)
	OnboardingLink(accountID, returnURL string) (string, error)
}

// PaymentService is the Stripe settlement bridge. The platform always keeps
// exactly the base price as its application fee; the markup (total - base)
// flows to the partner's payout account, minus Stripe's own processing fees.
type PaymentService struct {
	WebhookSecret string
}

func NewPaymentService(secretKey, webhookSecret string) *PaymentService {
	stripe.Key = secretKey
	return &PaymentService{WebhookSecret: webhookSecret}
}

func (s *PaymentService) CreateCheckoutSession(in CheckoutInput) (string, error) {
	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String("usd"),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name:        stripe.String(in.ResortName),
						Description: stripe.String(fmt.Sprintf("%d nights at %s", in.Nights, in.ResortLocation)),
					},
					UnitAmount: stripe.Int64(int64(in.TotalPrice)),
				},
				Quantity: stripe.Int64(1),
			},
		},
		ClientReferenceID: stripe.String(in.BookingID),
		SuccessURL:        stripe.String(fmt.Sprintf("%s/success/%s", in.Origin, in.BookingID)),
		CancelURL:         stripe.String(in.Origin + "/"),
	}
	if in.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(in.CustomerEmail)
	}

	// Split only when the partner completed payout onboarding with a real
	// account. Otherwise the platform retains the full amount and the
	// booking still proceeds.
	if RealPayoutAccount(in.PayoutAccountID) {
		params.PaymentIntentData = &stripe.CheckoutSessionPaymentIntentDataParams{
			ApplicationFeeAmount: stripe.Int64(int64(in.BasePrice)),
			TransferData: &stripe.CheckoutSessionPaymentIntentDataTransferDataParams{
				Destination: stripe.String(*in.PayoutAccountID),
			},
		}
	}

	sess, err := session.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to create checkout session: %w", err)
	}

	fee := in.BasePrice
	partnerShare := in.TotalPrice - in.BasePrice
	log.Printf("[STRIPE SPLIT] total=%d platform_fee=%d partner_share=%d booking=%s",
		in.TotalPrice, fee, partnerShare, in.BookingID)

	return sess.URL, nil
}

// RealPayoutAccount reports whether a payout account reference can receive
// transfers: present, not the seeded placeholder, not a test account.
func RealPayoutAccount(accountID *string) bool {
	if accountID == nil {
		return false
	}
	id := *accountID
	if id == "" || strings.HasPrefix(id, "acct_1placeholder") || strings.Contains(id, "test") {
		return false
	}
	return true
}

func (s *PaymentService) CreateExpressAccount() (string, error) {
	acct, err := account.New(&stripe.AccountParams{
		Type: stripe.String(string(stripe.AccountTypeExpress)),
		Capabilities: &stripe.AccountCapabilitiesParams{
			CardPayments: &stripe.AccountCapabilitiesCardPaymentsParams{Requested: stripe.Bool(true)},
			Transfers:    &stripe.AccountCapabilitiesTransfersParams{Requested: stripe.Bool(true)},
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to create express account: %w", err)
	}
	return acct.ID, nil
}

func (s *PaymentService) OnboardingLink(accountID, returnURL string) (string, error) {
	link, err := accountlink.New(&stripe.AccountLinkParams{
		Account:    stripe.String(accountID),
		RefreshURL: stripe.String(returnURL),
		ReturnURL:  stripe.String(returnURL),
		Type:       stripe.String("account_onboarding"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to create onboarding link: %w", err)
	}
	return link.URL, nil
}

// VerifyEvent checks the gateway's signature before any state is touched.
func (s *PaymentService) VerifyEvent(payload []byte, sigHeader string) (stripe.Event, error) {
	return webhook.ConstructEvent(payload, sigHeader, s.WebhookSecret)
}
