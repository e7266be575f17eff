package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
)

func (a *App) Main(ctx context.Context) {

	fmt.Println("eCabinet device console (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)

	for {
		a.handlePendingKick()

		fmt.Printf("ecabinet %s > ", a.showLogin())
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		cmd := parts[0]
		args := parts[1:]

		// A kick that arrived while the user was typing pre-empts the
		// command they just entered.
		if a.handlePendingKick() {
			continue
		}

		// The user is back at the keyboard; the console's focus analog.
		if a.isLoggedIn() {
			a.guard.Wake()
		}

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				fmt.Println("Available commands: docs, rooms, meetings, upload <path>, preview <id>, delete <id>, logout, exit")
			} else {
				fmt.Println("Available commands: login, exit")
			}

		case "login":
			a.Login(ctx)

		case "logout":
			a.Logout(ctx)

		case "docs":
			a.ListDocuments(ctx)

		case "rooms":
			a.ListRooms(ctx)

		case "meetings":
			a.ListMeetings(ctx)

		case "upload":
			if len(args) == 0 {
				fmt.Println("Usage: upload <path>")
				continue
			}
			a.Upload(ctx, args[0])

		case "preview":
			if len(args) == 0 {
				fmt.Println("Usage: preview <id>")
				continue
			}
			a.Preview(ctx, args[0], scanner)

		case "delete":
			if len(args) == 0 {
				fmt.Println("Usage: delete <id>")
				continue
			}
			a.Delete(ctx, args[0])

		case "exit", "quit":
			fmt.Println("Bye!")
			return

		default:
			fmt.Println("Unknown command:", cmd)
		}
	}
}

func (a *App) showLogin() string {
	if sess := a.guard.Current(); sess != nil {
		return sess.Email
	}
	return "guest"
}

// handlePendingKick shows the forced-logout notice if one is waiting and
// blocks until the user acknowledges it. Reports whether a kick was handled.
func (a *App) handlePendingKick() bool {
	select {
	case reason := <-a.kicked:
		fmt.Println()
		fmt.Println("==============================================")
		fmt.Printf("  Your session has ended: %s.\n", reason)
		fmt.Println("  Press Enter to continue.")
		fmt.Println("==============================================")
		_, _ = a.reader.ReadString('\n')
		a.guard.Acknowledge()
		a.detach()
		return true
	default:
		return false
	}
}

// detach stops the per-login machinery (poll, realtime feed).
func (a *App) detach() {
	if a.stopFeed != nil {
		a.stopFeed()
		a.stopFeed = nil
	}
	if a.stopGuard != nil {
		a.stopGuard()
		a.stopGuard = nil
	}
}
