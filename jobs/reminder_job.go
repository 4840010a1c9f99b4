package jobs

import (
	"fmt"
	"log"
	"time"

	"github.com/studiobook/studiobook/database"
	"github.com/studiobook/studiobook/models"
	"github.com/studiobook/studiobook/notifications"
)

func SendClassReminders() {
	log.Println("Running job: SendClassReminders...")

	now := time.Now()
	lowerBound := now.Add(60 * time.Minute)
	upperBound := now.Add(65 * time.Minute)

	var upcomingBookings []models.Booking

	err := database.DB.
		Preload("User").
		Preload("ClassInstance.Template").
		Where("bookings.status = ? AND class_instances.date BETWEEN ? AND ?",
			models.BookingStatusConfirmed, lowerBound, upperBound).
		Joins("JOIN class_instances ON bookings.class_instance_id = class_instances.id").
		Find(&upcomingBookings).Error

	if err != nil {
		log.Printf("Error checking for upcoming classes: %v", err)
		return
	}

	for _, booking := range upcomingBookings {
		emailSubject := "Reminder: Your Class Starts in 1 Hour!"
		emailBody := fmt.Sprintf(
			"<h1>Class Reminder</h1><p>Hi %s,</p><p>This is a friendly reminder that %s starts at %s.</p>",
			booking.User.Name,
			booking.ClassInstance.Template.Name,
			booking.ClassInstance.Date.Format(time.Kitchen),
		)

		go notifications.SendEmail(booking.User.Name, booking.User.Email, emailSubject, emailBody)
	}
}
