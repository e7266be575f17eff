package cli

import (
	"context"
	"fmt"
	"log"
	"strings"
)

func (a *App) ListRooms(ctx context.Context) {
	if !a.isLoggedIn() {
		log.Printf("Not logged in")
		return
	}

	a.rememberTab(ctx, "rooms")

	rooms, err := a.remote.ListRooms(ctx)
	if err != nil {
		log.Println(err.Error())
		return
	}

	for _, r := range rooms {
		fmt.Printf("%s  %-25s cap %-3d %-12s %s\n",
			r.ID, r.Name, r.Capacity, r.Status, strings.Join(r.Facilities, ", "))
	}
}

func (a *App) ListMeetings(ctx context.Context) {
	if !a.isLoggedIn() {
		log.Printf("Not logged in")
		return
	}

	a.rememberTab(ctx, "meetings")

	meetings, err := a.remote.ListMeetings(ctx)
	if err != nil {
		log.Println(err.Error())
		return
	}

	for _, m := range meetings {
		fmt.Printf("%s  %-30s %s %s-%s room=%s %s\n",
			m.ID, m.Title, m.Date, m.StartTime, m.EndTime, m.RoomID, m.Status)
	}
}
