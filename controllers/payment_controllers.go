package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/takumaeat/takumaeat-app/events"
	"github.com/takumaeat/takumaeat-app/services"
	"github.com/takumaeat/takumaeat-app/utils"
)

type PaymentController struct {
	Payments *services.PaymentService
	Midtrans *services.MidtransService
	Gateway  *services.SnapGateway
}

func NewPaymentController(payments *services.PaymentService, midtrans *services.MidtransService, gateway *services.SnapGateway) *PaymentController {
	return &PaymentController{
		Payments: payments,
		Midtrans: midtrans,
		Gateway:  gateway,
	}
}

// HandleNotification menerima webhook notifikasi Midtrans, memverifikasi
// signature-nya, mengupdate status pembayaran + order, lalu meneruskan
// hasilnya ke sesi checkout yang menunggu
func (pc *PaymentController) HandleNotification(c *gin.Context) {
	type notification struct {
		OrderID           string `json:"order_id" binding:"required"`
		StatusCode        string `json:"status_code" binding:"required"`
		GrossAmount       string `json:"gross_amount" binding:"required"`
		SignatureKey      string `json:"signature_key" binding:"required"`
		TransactionStatus string `json:"transaction_status" binding:"required"`
		TransactionID     string `json:"transaction_id"`
		PaymentType       string `json:"payment_type"`
		StatusMessage     string `json:"status_message"`
	}
	var notif notification
	if err := c.ShouldBindJSON(&notif); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if !pc.Midtrans.ValidateSignature(notif.OrderID, notif.StatusCode, notif.GrossAmount, notif.SignatureKey) {
		utils.ErrorLogger.Printf("Invalid notification signature for order %s", notif.OrderID)
		utils.RespondError(c, http.StatusForbidden, errors.New("invalid signature"))
		return
	}

	status := services.MapTransactionStatus(notif.TransactionStatus)
	if status == "unknown" {
		utils.InfoLogger.Printf("Ignoring unknown transaction status %q for order %s",
			notif.TransactionStatus, notif.OrderID)
		utils.RespondJSON(c, http.StatusOK, "Notification ignored", nil)
		return
	}

	payment, err := pc.Payments.UpdateStatusByRef(notif.OrderID, status, notif.TransactionID, notif.PaymentType)
	if err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	events.BroadcastPaymentUpdate(*payment)

	// bangunkan sesi checkout yang sedang menunggu hasil token ini
	if payment.SnapToken != "" {
		pc.Gateway.Resolve(payment.SnapToken, status, notif.StatusMessage)
	}

	utils.InfoLogger.Printf("Payment for order %s updated to %s", notif.OrderID, status)
	utils.RespondJSON(c, http.StatusOK, "Notification processed", nil)
}

// GetPaymentConfig mengembalikan client key dan URL script Snap untuk
// storefront
func (pc *PaymentController) GetPaymentConfig(c *gin.Context) {
	utils.RespondJSON(c, http.StatusOK, "Payment config", gin.H{
		"client_key":    pc.Midtrans.ClientKey(),
		"snap_script":   pc.Midtrans.SnapScriptURL(),
		"gateway_ready": pc.Midtrans.IsReady(),
	})
}

// CheckPaymentStatus menanyakan status transaksi langsung ke gateway dan
// menyinkronkan hasilnya, untuk jalur "resume payment" dari riwayat order
func (pc *PaymentController) CheckPaymentStatus(c *gin.Context) {
	ref := c.Param("order_ref")

	payment, err := pc.Payments.GetPaymentByRef(ref)
	if err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	if payment.PaymentMethod != "gateway" {
		utils.RespondJSON(c, http.StatusOK, "Payment status", payment)
		return
	}

	status, err := pc.Midtrans.CheckTransactionStatus(ref)
	if err != nil {
		utils.RespondError(c, http.StatusBadGateway, err)
		return
	}

	if status != "unknown" && status != payment.Status {
		if updated, uerr := pc.Payments.UpdateStatusByRef(ref, status, "", ""); uerr == nil {
			payment = updated
			events.BroadcastPaymentUpdate(*payment)
		}
	}

	utils.RespondJSON(c, http.StatusOK, "Payment status", payment)
}
