package main

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/renaix/chat-client/internal/models"
	"github.com/renaix/chat-client/internal/views"
)

var (
	offerColor  = color.New(color.FgYellow)
	okColor     = color.New(color.FgGreen)
	badColor    = color.New(color.FgRed)
	unreadColor = color.New(color.Bold)
)

var conversationsCmd = &cobra.Command{
	Use:   "conversations",
	Short: "List conversations",
	RunE: func(cmd *cobra.Command, args []string) error {
		convs, err := repo.Conversations(cmd.Context())
		if err != nil {
			return err
		}
		if len(convs) == 0 {
			fmt.Println("No hay conversaciones")
			return nil
		}
		fmt.Printf("%-24s %-14s %6s  %s\n", "THREAD", "WITH", "UNREAD", "LAST")
		for _, c := range convs {
			line := fmt.Sprintf("%-24s %-14s %6d  %s",
				c.ThreadID, views.ParticipantName(c, flagUserID), c.UnreadCount, views.Preview(c))
			if c.UnreadCount > 0 {
				unreadColor.Println(line)
			} else {
				fmt.Println(line)
			}
		}
		return nil
	},
}

var threadProductID int

var threadCmd = &cobra.Command{
	Use:   "thread [user-id]",
	Short: "Show the conversation with a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid user id %q", args[0])
		}
		var pid *int
		if threadProductID != 0 {
			pid = &threadProductID
		}
		msgs, err := repo.Thread(cmd.Context(), userID, pid)
		if err != nil {
			return err
		}
		for _, m := range msgs {
			printMessage(m)
		}
		state := views.ThreadNegotiation(msgs)
		if state != views.NegotiationNone {
			fmt.Printf("\nnegotiation: %s\n", state)
		}
		return nil
	},
}

var unreadCmd = &cobra.Command{
	Use:   "unread",
	Short: "Show unread messages",
	RunE: func(cmd *cobra.Command, args []string) error {
		u, err := repo.Unread(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("%d mensajes sin leer\n", u.Total)
		for _, m := range u.Messages {
			printMessage(m)
		}
		return nil
	},
}

var sendProductID int

var sendCmd = &cobra.Command{
	Use:   "send [recipient-id] [text]",
	Short: "Send a text message",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		recipientID, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid recipient id %q", args[0])
		}
		text := args[1]
		for _, a := range args[2:] {
			text += " " + a
		}
		var pid *int
		if sendProductID != 0 {
			pid = &sendProductID
		}
		m, err := repo.SendMessage(cmd.Context(), recipientID, text, pid)
		if err != nil {
			return err
		}
		okColor.Printf("✓ enviado (mensaje %d)\n", m.ID)
		return nil
	},
}

var markReadCmd = &cobra.Command{
	Use:   "mark-read [message-id]",
	Short: "Mark a message as read",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid message id %q", args[0])
		}
		if err := repo.MarkRead(cmd.Context(), id); err != nil {
			return err
		}
		okColor.Printf("✓ mensaje %d leído\n", id)
		return nil
	},
}

var offerCmd = &cobra.Command{
	Use:   "offer [product-id] [price]",
	Short: "Send a price offer on a product",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		productID, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid product id %q", args[0])
		}
		price, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("invalid price %q", args[1])
		}
		m, err := repo.SendOffer(cmd.Context(), productID, price)
		if err != nil {
			return err
		}
		offerColor.Printf("✓ oferta %d: %s\n", m.ID, views.OfferLine(m))
		return nil
	},
}

var acceptCmd = &cobra.Command{
	Use:   "accept [message-id]",
	Short: "Accept an offer (creates the purchase server-side)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid message id %q", args[0])
		}
		res, err := repo.AcceptOffer(cmd.Context(), id)
		if err != nil {
			return err
		}
		okColor.Printf("✓ %s\n", views.OfferLine(res.Message))
		fmt.Printf("compra %d: %s por %.2f € (%s)\n",
			res.Purchase.ID, res.Purchase.ProductName, res.Purchase.Price, res.Purchase.Status)
		return nil
	},
}

var rejectCmd = &cobra.Command{
	Use:   "reject [message-id]",
	Short: "Reject an offer",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid message id %q", args[0])
		}
		m, err := repo.RejectOffer(cmd.Context(), id)
		if err != nil {
			return err
		}
		badColor.Printf("✗ %s\n", views.OfferLine(m))
		return nil
	},
}

var counterCmd = &cobra.Command{
	Use:   "counter [offer-id] [price]",
	Short: "Send a counter-offer",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		offerID, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid offer id %q", args[0])
		}
		price, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("invalid price %q", args[1])
		}
		m, err := repo.SendCounterOffer(cmd.Context(), offerID, price)
		if err != nil {
			return err
		}
		offerColor.Printf("✓ contraoferta %d: %s\n", m.ID, views.OfferLine(m))
		return nil
	},
}

var watchInterval time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Poll the unread count until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt)
		ticker := time.NewTicker(watchInterval)
		defer ticker.Stop()

		poll := func() {
			n, err := repo.UnreadCount(cmd.Context())
			if err != nil {
				badColor.Printf("%s  %v\n", time.Now().Format("15:04:05"), err)
				return
			}
			if n > 0 {
				unreadColor.Printf("%s  %d sin leer\n", time.Now().Format("15:04:05"), n)
			} else {
				fmt.Printf("%s  sin mensajes nuevos\n", time.Now().Format("15:04:05"))
			}
		}

		poll()
		for {
			select {
			case <-ticker.C:
				poll()
			case <-stop:
				return nil
			}
		}
	},
}

func printMessage(m models.Message) {
	marker := " "
	if !m.Read {
		marker = "*"
	}
	line := fmt.Sprintf("%s [%d] %s → %s: %s", marker, m.ID, m.Sender.Name, m.Recipient.Name, views.OfferLine(m))
	switch m.Type {
	case models.TypeOffer, models.TypeCounterOffer:
		offerColor.Println(line)
	case models.TypeOfferAccepted:
		okColor.Println(line)
	case models.TypeOfferRejected:
		badColor.Println(line)
	case models.TypeText:
		fmt.Println(line)
	default:
		fmt.Println(line)
	}
}

func init() {
	threadCmd.Flags().IntVar(&threadProductID, "product", 0, "restrict to one product's thread")
	sendCmd.Flags().IntVar(&sendProductID, "product", 0, "attach the message to a product thread")
	watchCmd.Flags().DurationVar(&watchInterval, "interval", 30*time.Second, "poll interval")
}
