package paymentController

import (
	teamController "erudio/controllers/team"
	"erudio/models"
	courseModels "erudio/models/course"
	"erudio/utils"
	"log"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Gateway is the slice of the payment provider the reconciliation step
// needs. A nil response means the gateway was unreachable, which is not the
// same thing as a declined payment.
type Gateway interface {
	VerifyTransaction(reference string) *utils.VerifyResponse
}

// Outcome classifies a reconciliation attempt.
type Outcome string

const (
	OutcomeNotFound           Outcome = "not_found"
	OutcomeGatewayUnreachable Outcome = "gateway_unreachable"
	OutcomeDeclined           Outcome = "declined"
	OutcomeGranted            Outcome = "granted"
	OutcomeAlreadyGranted     Outcome = "already_granted"
)

// ReconcileResult is what the verify handler turns into an HTTP reply.
type ReconcileResult struct {
	Outcome     Outcome
	Message     string
	Transaction *models.Transaction
}

// Reconcile converts a gateway-confirmed payment into a durable entitlement
// exactly once.
//
// The transaction status moves pending -> success (or failed) through a
// conditional UPDATE, so no call ever leaves a terminal state, and the
// update's row count tells us whether this call performed the transition.
// The entitlement itself is granted with get-or-create semantics keyed on
// the store's unique constraints, so a double-submitted callback cannot
// produce two enrollments or extend a team subscription twice. The
// confirmation notification fires only on the branch that newly created
// the entitlement.
func Reconcile(db *gorm.DB, gateway Gateway, userID uint, reference string) (*ReconcileResult, error) {
	var txn models.Transaction
	if err := db.Where("reference = ? AND user_id = ?", reference, userID).First(&txn).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			// Either absent or not owned by the caller; same generic answer.
			return &ReconcileResult{Outcome: OutcomeNotFound, Message: "Invalid transaction reference."}, nil
		}
		return nil, err
	}

	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		return nil, err
	}

	resp := gateway.VerifyTransaction(reference)
	if resp == nil {
		if err := markFailed(db, &txn); err != nil {
			return nil, err
		}
		return &ReconcileResult{
			Outcome:     OutcomeGatewayUnreachable,
			Message:     "We couldn't reach the payment gateway. Please try again later.",
			Transaction: &txn,
		}, nil
	}

	if resp.Data.Status != "success" {
		if err := markFailed(db, &txn); err != nil {
			return nil, err
		}
		message := resp.Message
		if message == "" {
			message = "Please contact support if you were debited."
		}
		utils.Publish(utils.Event{
			Type:   utils.EventPaymentFailed,
			Email:  user.Email,
			Name:   user.FirstName,
			Reason: message,
		})
		return &ReconcileResult{
			Outcome:     OutcomeDeclined,
			Message:     "Payment verification failed. Reason: " + message,
			Transaction: &txn,
		}, nil
	}

	// Conditional promotion; RowsAffected == 1 only for the call that wins.
	promotion := db.Model(&models.Transaction{}).
		Where("id = ? AND status = ?", txn.ID, models.TransactionPending).
		Update("status", models.TransactionSuccess)
	if promotion.Error != nil {
		return nil, promotion.Error
	}
	firstReconcile := promotion.RowsAffected == 1
	txn.Status = models.TransactionSuccess

	switch {
	case txn.CourseID != nil:
		return grantCourse(db, &user, &txn)
	case txn.PlanID != nil:
		return grantTeam(db, &user, &txn, firstReconcile)
	default:
		log.Printf("[PAYMENT] Transaction %s has no target, nothing to grant", txn.Reference)
		return &ReconcileResult{Outcome: OutcomeAlreadyGranted, Message: "Payment recorded.", Transaction: &txn}, nil
	}
}

func markFailed(db *gorm.DB, txn *models.Transaction) error {
	result := db.Model(&models.Transaction{}).
		Where("id = ? AND status = ?", txn.ID, models.TransactionPending).
		Update("status", models.TransactionFailed)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 1 {
		txn.Status = models.TransactionFailed
	}
	return nil
}

func grantCourse(db *gorm.DB, user *models.User, txn *models.Transaction) (*ReconcileResult, error) {
	var course courseModels.Course
	if err := db.First(&course, *txn.CourseID).Error; err != nil {
		return nil, err
	}

	enrollment := courseModels.Enrollment{UserID: user.ID, CourseID: course.ID}
	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "course_id"}},
		DoNothing: true,
	}).Create(&enrollment)
	if result.Error != nil {
		return nil, result.Error
	}

	if result.RowsAffected == 0 {
		return &ReconcileResult{
			Outcome:     OutcomeAlreadyGranted,
			Message:     "Payment already verified. You are enrolled in '" + course.Title + "'.",
			Transaction: txn,
		}, nil
	}

	utils.Publish(utils.Event{
		Type:        utils.EventEnrollmentGranted,
		Email:       user.Email,
		Name:        user.FirstName,
		CourseTitle: course.Title,
	})

	return &ReconcileResult{
		Outcome:     OutcomeGranted,
		Message:     "Payment successful! You are now enrolled in '" + course.Title + "'.",
		Transaction: txn,
	}, nil
}

func grantTeam(db *gorm.DB, user *models.User, txn *models.Transaction, firstReconcile bool) (*ReconcileResult, error) {
	if _, err := teamController.ActivateTeamForOwner(db, user, *txn.PlanID, firstReconcile); err != nil {
		return nil, err
	}

	if !firstReconcile {
		return &ReconcileResult{
			Outcome:     OutcomeAlreadyGranted,
			Message:     "Payment already verified. Your team subscription is active.",
			Transaction: txn,
		}, nil
	}

	return &ReconcileResult{
		Outcome:     OutcomeGranted,
		Message:     "Payment successful! Your team subscription is now active.",
		Transaction: txn,
	}, nil
}
